package pagination

import (
	"math"
	"testing"
)

func TestDefaults(t *testing.T) {
	tests := []struct {
		name      string
		in        PageRequest
		wantPage  int
		wantLimit int
	}{
		{name: "empty", in: PageRequest{}, wantPage: 1, wantLimit: DefaultLimit},
		{name: "explicit", in: PageRequest{Page: 3, Limit: 50}, wantPage: 3, wantLimit: 50},
		{name: "capped", in: PageRequest{Page: 1, Limit: 10000}, wantPage: 1, wantLimit: MaxLimit},
		{name: "negative", in: PageRequest{Page: -2, Limit: -5}, wantPage: 1, wantLimit: DefaultLimit},
		{name: "huge page", in: PageRequest{Page: 1<<62 + 1, Limit: 20}, wantPage: MaxPage, wantLimit: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.in
			req.Defaults()
			if req.Page != tt.wantPage || req.Limit != tt.wantLimit {
				t.Errorf("Defaults() = page %d limit %d, want %d/%d", req.Page, req.Limit, tt.wantPage, tt.wantLimit)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	tests := []struct {
		name string
		in   PageRequest
		want int
	}{
		{name: "third page", in: PageRequest{Page: 3, Limit: 20}, want: 40},
		{name: "first page", in: PageRequest{Page: 1, Limit: 20}, want: 0},
		{name: "zero value", in: PageRequest{}, want: 0},
		{name: "overflow saturates", in: PageRequest{Page: 1<<62 + 1, Limit: 20}, want: math.MaxInt},
		{name: "max page at max limit", in: PageRequest{Page: MaxPage, Limit: MaxLimit}, want: (MaxPage - 1) * MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Offset(); got != tt.want {
				t.Errorf("Offset() = %d, want %d", got, tt.want)
			}
			if got := tt.in.Offset(); got < 0 {
				t.Errorf("Offset() = %d, must not be negative", got)
			}
		})
	}
}

func TestNewPageResponse(t *testing.T) {
	resp := NewPageResponse[string](nil, 4, 20, 41)
	if resp.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", resp.TotalPages)
	}
	if resp.Data == nil || len(resp.Data) != 0 {
		t.Error("nil data should become an empty slice")
	}

	empty := NewPageResponse([]int{}, 1, 20, 0)
	if empty.TotalPages != 0 {
		t.Errorf("TotalPages = %d, want 0", empty.TotalPages)
	}
}
