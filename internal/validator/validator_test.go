package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

type roleRequest struct {
	Role string `validate:"required,user_role"`
}

type actionRequest struct {
	Action string `validate:"required,audit_action"`
}

func TestCustomValidators(t *testing.T) {
	v := validator.New()
	RegisterOn(v)

	tests := []struct {
		name    string
		input   any
		wantErr bool
	}{
		{name: "known_role", input: roleRequest{Role: "shopmanager"}},
		{name: "unknown_role", input: roleRequest{Role: "owner"}, wantErr: true},
		{name: "known_action", input: actionRequest{Action: "order-paid"}},
		{name: "unknown_action", input: actionRequest{Action: "order-refunded"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Struct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
