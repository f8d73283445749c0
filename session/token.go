package session

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Claims are the session token claims we care about. Firebase ID tokens carry the user ID in both
// user_id and sub.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// TokenSource takes the identity from a signed-in session token. The token signature is verified with
// Secret (HS256) when one is given. Otherwise the claims are only decoded, which is enough to learn who
// the token belongs to but proves nothing.
type TokenSource struct {
	Token  string
	Secret string
	Log    *logrus.Entry
	Now    func() time.Time
}

func (s *TokenSource) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *TokenSource) parse() (*Claims, error) {
	claims := &Claims{}

	if s.Secret == "" {
		if s.Log != nil {
			s.Log.Warn("no token secret configured; the session token signature will not be verified")
		}
		_, _, err := jwt.NewParser().ParseUnverified(s.Token, claims)
		if err != nil {
			return nil, err
		}
		if exp, _ := claims.GetExpirationTime(); exp != nil && !s.now().Before(exp.Time) {
			return nil, jwt.ErrTokenExpired
		}
		return claims, nil
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(s.Token, claims, func(_ *jwt.Token) (interface{}, error) {
		return []byte(s.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Current returns the identity in the session token. A missing, invalid or expired token means that
// nobody is signed in.
func (s *TokenSource) Current(_ context.Context) (*Identity, error) {
	if s.Token == "" {
		return nil, ErrNoIdentity
	}

	claims, err := s.parse()
	if err != nil {
		return nil, errors.Wrap(ErrNoIdentity, err.Error())
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return nil, errors.Wrap(ErrNoIdentity, "the session token has no user ID")
	}

	return &Identity{UserID: userID, Email: claims.Email}, nil
}
