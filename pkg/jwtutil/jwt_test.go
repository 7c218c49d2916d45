package jwtutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSignAndValidate(t *testing.T) {
	p := NewProvider("test-secret")
	userID, hubID := uuid.New(), uuid.New()

	token, err := p.Sign(userID, hubID, []string{"ROLE_OPERATOR", "ROLE_ORDERS_MANAGER"}, time.Minute)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	claims, err := p.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.UserID != userID || claims.HubID != hubID {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if len(claims.Roles) != 2 {
		t.Fatalf("roles expected 2 got %d", len(claims.Roles))
	}
}

func TestValidateRejectsWrongKey(t *testing.T) {
	token, err := NewProvider("key-one").Sign(uuid.New(), uuid.New(), nil, time.Minute)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := NewProvider("key-two").Validate(token); err == nil {
		t.Fatalf("expected signature error")
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	p := NewProvider("test-secret")
	p.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := p.Sign(uuid.New(), uuid.New(), nil, time.Minute)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := NewProvider("test-secret").Validate(token); err == nil {
		t.Fatalf("expected expiry error")
	}
}

func TestValidateRejectsMissingHub(t *testing.T) {
	p := NewProvider("test-secret")
	token, err := p.Sign(uuid.New(), uuid.Nil, nil, time.Minute)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := p.Validate(token); err == nil {
		t.Fatalf("expected hub_id error")
	}
}
