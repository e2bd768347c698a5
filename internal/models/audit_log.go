package models

import (
	"errors"
	"strings"
	"time"

	"storefront/internal/uuid"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	// ErrUnknownAuditAction is returned when an action is not part of the enumeration.
	ErrUnknownAuditAction = errors.New("unknown audit action")
	// ErrAuditLogImmutable is returned by the GORM hooks on any update or delete.
	ErrAuditLogImmutable = errors.New("audit log entries are append-only")
	// ErrUnknownTargetKind is returned for a TargetRef whose Kind is not user, order or product.
	ErrUnknownTargetKind = errors.New("unknown audit target kind")
	// ErrDuplicateTargetKind is returned when two references share a kind.
	ErrDuplicateTargetKind = errors.New("duplicate audit target kind")
)

// AuditAction identifies the kind of privileged operation an entry records.
// New actions are appended; existing values are never renamed or reused.
type AuditAction string

const (
	// identity / session
	ActionLogin  AuditAction = "login"
	ActionLogout AuditAction = "logout"

	// user management
	ActionResetPassword AuditAction = "reset-password"
	ActionSuspend       AuditAction = "suspend"
	ActionActivate      AuditAction = "activate"
	ActionChangeRole    AuditAction = "change-role"
	ActionDelete        AuditAction = "delete"
	ActionUpdateAddress AuditAction = "update-address"

	// catalog
	ActionProductCreated     AuditAction = "product-created"
	ActionProductUpdated     AuditAction = "product-updated"
	ActionProductDeleted     AuditAction = "product-deleted"
	ActionCategoryCreated    AuditAction = "category-created"
	ActionCategoryUpdated    AuditAction = "category-updated"
	ActionCategoryDeleted    AuditAction = "category-deleted"
	ActionSubcategoryCreated AuditAction = "subcategory-created"
	ActionSubcategoryUpdated AuditAction = "subcategory-updated"
	ActionSubcategoryDeleted AuditAction = "subcategory-deleted"

	// orders
	ActionOrderPaid      AuditAction = "order-paid"
	ActionOrderDelivered AuditAction = "order-delivered"
	ActionOrderDeleted   AuditAction = "order-deleted"

	ActionCustom AuditAction = "custom-action"
)

var auditActions = []AuditAction{
	ActionLogin, ActionLogout,
	ActionResetPassword, ActionSuspend, ActionActivate, ActionChangeRole, ActionDelete, ActionUpdateAddress,
	ActionProductCreated, ActionProductUpdated, ActionProductDeleted,
	ActionCategoryCreated, ActionCategoryUpdated, ActionCategoryDeleted,
	ActionSubcategoryCreated, ActionSubcategoryUpdated, ActionSubcategoryDeleted,
	ActionOrderPaid, ActionOrderDelivered, ActionOrderDeleted,
	ActionCustom,
}

// AuditActions returns the enumeration in declaration order.
func AuditActions() []AuditAction {
	out := make([]AuditAction, len(auditActions))
	copy(out, auditActions)
	return out
}

// Valid reports whether a is part of the enumeration.
func (a AuditAction) Valid() bool {
	for _, known := range auditActions {
		if a == known {
			return true
		}
	}
	return false
}

// ParseAuditAction converts user input into an AuditAction.
func ParseAuditAction(s string) (AuditAction, error) {
	a := AuditAction(strings.TrimSpace(s))
	if !a.Valid() {
		return "", ErrUnknownAuditAction
	}
	return a, nil
}

// TargetKind names the entity type an audit entry can point at.
type TargetKind string

const (
	TargetUser    TargetKind = "user"
	TargetOrder   TargetKind = "order"
	TargetProduct TargetKind = "product"
)

// TargetRef is a typed reference from an audit entry to the entity it affected.
type TargetRef struct {
	Kind TargetKind
	ID   string
}

func UserTarget(id string) TargetRef    { return TargetRef{Kind: TargetUser, ID: id} }
func OrderTarget(id string) TargetRef   { return TargetRef{Kind: TargetOrder, ID: id} }
func ProductTarget(id string) TargetRef { return TargetRef{Kind: TargetProduct, ID: id} }

// AuditLog is one immutable record of a privileged action. It has no
// UpdatedAt or DeletedAt: rows are inserted once and never touched again.
type AuditLog struct {
	ID              string                      `gorm:"type:uuid;primaryKey" json:"id"`
	ActorID         string                      `gorm:"type:uuid;not null;index" json:"actor_id"`
	Action          AuditAction                 `gorm:"not null;index" json:"action"`
	TargetUserID    *string                     `gorm:"type:uuid;index" json:"target_user_id,omitempty"`
	TargetOrderID   *string                     `gorm:"type:uuid;index" json:"target_order_id,omitempty"`
	TargetProductID *string                     `gorm:"type:uuid;index" json:"target_product_id,omitempty"`
	Notes           string                      `json:"notes"`
	IPAddress       string                      `json:"ip_address"`
	UserAgent       string                      `json:"user_agent"`
	Location        string                      `json:"location"`
	Tags            datatypes.JSONSlice[string] `json:"tags"`
	CreatedAt       time.Time                   `gorm:"not null;index" json:"created_at"`
}

// BeforeCreate assigns the id and creation time unless they were already set
// (dead-letter replay keeps the original values).
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	a.CreatedAt = a.CreatedAt.UTC()
	return nil
}

func (a *AuditLog) BeforeUpdate(tx *gorm.DB) error { return ErrAuditLogImmutable }

func (a *AuditLog) BeforeDelete(tx *gorm.DB) error { return ErrAuditLogImmutable }

// SetTargets flattens refs onto the nullable target columns. References with
// an empty ID are ignored; at most one reference per kind is allowed.
func (a *AuditLog) SetTargets(refs []TargetRef) error {
	var user, order, product *string
	for _, ref := range refs {
		if ref.ID == "" {
			continue
		}
		id := ref.ID
		var slot **string
		switch ref.Kind {
		case TargetUser:
			slot = &user
		case TargetOrder:
			slot = &order
		case TargetProduct:
			slot = &product
		default:
			return ErrUnknownTargetKind
		}
		if *slot != nil {
			return ErrDuplicateTargetKind
		}
		*slot = &id
	}
	a.TargetUserID, a.TargetOrderID, a.TargetProductID = user, order, product
	return nil
}

// Targets returns the references stored on the entry.
func (a *AuditLog) Targets() []TargetRef {
	var refs []TargetRef
	if a.TargetUserID != nil {
		refs = append(refs, UserTarget(*a.TargetUserID))
	}
	if a.TargetOrderID != nil {
		refs = append(refs, OrderTarget(*a.TargetOrderID))
	}
	if a.TargetProductID != nil {
		refs = append(refs, ProductTarget(*a.TargetProductID))
	}
	return refs
}
