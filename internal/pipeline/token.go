package pipeline

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Subject is the JWT subject carried by pipeline callback tokens.
const Subject = "pipeline"

var ErrInvalidToken = errors.New("invalid pipeline token")

type callbackClaims struct {
	ProjectID string `json:"project"`
	jwt.RegisteredClaims
}

// IssueCallbackToken signs a token that lets the pipeline report on a single project.
func IssueCallbackToken(secret []byte, projectID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := callbackClaims{
		ProjectID: projectID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyCallbackToken checks signature, expiry and subject, and returns the
// project the token is scoped to.
func VerifyCallbackToken(secret []byte, tokenStr string) (uuid.UUID, error) {
	var claims callbackClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}
	if claims.Subject != Subject {
		return uuid.Nil, ErrInvalidToken
	}
	id, err := uuid.Parse(claims.ProjectID)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}
