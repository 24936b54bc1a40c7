package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pujarshrikant459-ux/VidyaVahini/internal/portal"
)

// Claims is the JWT payload carrying a portal session. Sessions are
// deliberately stateless: nothing is stored server-side, and a restart
// or expiry forces re-authentication against the identity provider.
type Claims struct {
	Role       string `json:"role"`
	StudentID  string `json:"student_id,omitempty"`
	SchoolID   string `json:"school_id,omitempty"`
	SchoolName string `json:"school_name,omitempty"`
	jwt.RegisteredClaims
}

// Session converts the claims back into a portal session.
func (c Claims) Session() portal.Session {
	return portal.Session{
		Role:       portal.Role(c.Role),
		StudentID:  c.StudentID,
		SchoolID:   c.SchoolID,
		SchoolName: c.SchoolName,
	}
}

// Issue signs an HS256 token for the given session.
func Issue(subject string, sess portal.Session, issuer, key string, ttl time.Duration) (string, time.Time, error) {
	exp := time.Now().Add(ttl)
	claims := Claims{
		Role:       string(sess.Role),
		StudentID:  sess.StudentID,
		SchoolID:   sess.SchoolID,
		SchoolName: sess.SchoolName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// Parse validates a token and returns its claims.
func Parse(tokenStr, key, issuer string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(key), nil
	})
	if err != nil {
		return Claims{}, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, errors.New("invalid token")
	}
	if issuer != "" && claims.Issuer != issuer {
		return Claims{}, errors.New("issuer mismatch")
	}
	if claims.Role != string(portal.RoleAdmin) && claims.Role != string(portal.RoleParent) {
		return Claims{}, errors.New("unknown role")
	}
	return *claims, nil
}
