package jwtutil

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// HubClaims carries the caller identity: which hub the token is scoped to and
// which roles the user holds inside it.
type HubClaims struct {
	UserID uuid.UUID `json:"user_id"`
	HubID  uuid.UUID `json:"hub_id"`
	Roles  []string  `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

type Provider struct {
	secret []byte
	now    func() time.Time
}

func NewProvider(signingKey string) *Provider {
	return &Provider{secret: []byte(signingKey), now: time.Now}
}

func (p *Provider) Sign(userID, hubID uuid.UUID, roles []string, ttl time.Duration) (string, error) {
	now := p.now()
	claims := HubClaims{
		UserID: userID,
		HubID:  hubID,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

func (p *Provider) Validate(tokenString string) (*HubClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &HubClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*HubClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	if claims.HubID == uuid.Nil {
		return nil, errors.New("token carries no hub_id")
	}
	return claims, nil
}
