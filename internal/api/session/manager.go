// Package session keeps the authenticated username in a signed cookie.
//
// The cookie carries an HS256 JWT whose subject is the username. Its id (jti)
// lets logout revoke the token server-side when a Revoker is configured;
// without one, logout only clears the cookie.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const (
	defaultTTL        = 24 * time.Hour
	defaultCookieName = "sos_session"
)

// Revoker stores ended token ids until they would have expired.
type Revoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type Config struct {
	Secret       string
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
}

type Manager struct {
	secret  []byte
	ttl     time.Duration
	cookie  string
	secure  bool
	revoker Revoker
	log     zerolog.Logger
	now     func() time.Time
}

// NewManager returns a Manager signing with cfg.Secret. revoker may be nil.
func NewManager(cfg Config, revoker Revoker, log zerolog.Logger) (*Manager, error) {
	if cfg.Secret == "" {
		return nil, errors.New("session: secret is required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	name := cfg.CookieName
	if name == "" {
		name = defaultCookieName
	}
	return &Manager{
		secret:  []byte(cfg.Secret),
		ttl:     ttl,
		cookie:  name,
		secure:  cfg.CookieSecure,
		revoker: revoker,
		log:     log,
		now:     time.Now,
	}, nil
}

// CookieName is the name of the session cookie.
func (m *Manager) CookieName() string {
	return m.cookie
}

// Start authenticates the client behind c as username.
func (m *Manager) Start(c echo.Context, username string) error {
	now := m.now()
	expires := now.Add(m.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   username,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}

	c.SetCookie(m.newCookie(signed, expires, int(m.ttl.Seconds())))
	return nil
}

// Current returns the username of the active session, if any.
func (m *Manager) Current(c echo.Context) (string, bool) {
	claims, ok := m.claims(c)
	if !ok {
		return "", false
	}
	return claims.Subject, true
}

// End clears the session cookie and revokes its token. Calling it without an
// active session is a no-op apart from the cookie reset.
func (m *Manager) End(c echo.Context) error {
	c.SetCookie(m.newCookie("", time.Unix(0, 0), -1))

	claims, ok := m.claims(c)
	if !ok || m.revoker == nil {
		return nil
	}

	ttl := claims.ExpiresAt.Time.Sub(m.now())
	if err := m.revoker.Revoke(c.Request().Context(), claims.ID, ttl); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

func (m *Manager) claims(c echo.Context) (*jwt.RegisteredClaims, bool) {
	cookie, err := c.Cookie(m.cookie)
	if err != nil || cookie.Value == "" {
		return nil, false
	}

	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(cookie.Value, claims,
		func(*jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return nil, false
	}

	if m.revoker != nil && claims.ID != "" {
		revoked, err := m.revoker.IsRevoked(c.Request().Context(), claims.ID)
		if err != nil {
			// Fail open: an unreachable store must not block SOS.
			m.log.Warn().Err(err).Msg("session revocation check failed, accepting token")
		} else if revoked {
			return nil, false
		}
	}
	return claims, true
}

func (m *Manager) newCookie(value string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
