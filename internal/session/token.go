package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// tokenIssuer is the issuer claim stamped on session cookie tokens.
const tokenIssuer = "site-gateway"

// tokenCodec signs and verifies the compact tokens carried in the session
// cookie. The token holds only the session ID; everything else about the
// session lives server-side in the Store.
type tokenCodec struct {
	secret []byte
}

// mint creates a signed token for the given session ID, expiring with the
// session record itself.
func (c tokenCodec) mint(sessionID uuid.UUID, expiresAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   sessionID.String(),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signed, nil
}

// parse verifies a session cookie token and extracts the session ID.
func (c tokenCodec) parse(raw string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid session token: %w", err)
	}
	if !token.Valid {
		return uuid.Nil, errors.New("invalid session token")
	}

	sessionID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("malformed session token subject: %w", err)
	}

	return sessionID, nil
}
