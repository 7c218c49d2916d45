package service

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const (
	ctxHubIDKey  ctxKey = "hubID"
	ctxUserIDKey ctxKey = "userID"
	ctxRolesKey  ctxKey = "roles"
)

type Role string

const (
	// RoleOperator grants access to catalog and order management of the hub.
	RoleOperator Role = "ROLE_OPERATOR"
	// RoleOrdersManager additionally grants approval of discount assignments.
	RoleOrdersManager Role = "ROLE_ORDERS_MANAGER"
)

func WithHubID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxHubIDKey, id)
}

func HubIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	v, ok := ctx.Value(ctxHubIDKey).(uuid.UUID)
	return v, ok
}

func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxUserIDKey, id)
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	v, ok := ctx.Value(ctxUserIDKey).(uuid.UUID)
	return v, ok
}

func WithRoles(ctx context.Context, roles []Role) context.Context {
	return context.WithValue(ctx, ctxRolesKey, roles)
}

func RolesFromContext(ctx context.Context) ([]Role, bool) {
	v, ok := ctx.Value(ctxRolesKey).([]Role)
	return v, ok
}

func hasRole(roles []Role, want Role) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}

// requireHub extracts the caller's hub and roles. Every service operation
// starts here: no storage is touched before the capability check passes.
func requireHub(ctx context.Context) (uuid.UUID, []Role, error) {
	hubID, ok := HubIDFromContext(ctx)
	if !ok {
		return uuid.Nil, nil, ErrUnauthorized
	}
	roles, _ := RolesFromContext(ctx)
	return hubID, roles, nil
}

// requireOperator is the baseline capability for hub CRUD operations.
func requireOperator(ctx context.Context) (uuid.UUID, []Role, error) {
	hubID, roles, err := requireHub(ctx)
	if err != nil {
		return uuid.Nil, nil, err
	}
	if !hasRole(roles, RoleOperator) && !hasRole(roles, RoleOrdersManager) {
		return uuid.Nil, nil, ErrForbidden
	}
	return hubID, roles, nil
}
