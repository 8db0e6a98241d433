package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type stubRevoker struct {
	revoked map[string]time.Duration
	err     error
}

func newStubRevoker() *stubRevoker {
	return &stubRevoker{revoked: make(map[string]time.Duration)}
}

func (r *stubRevoker) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if r.err != nil {
		return r.err
	}
	r.revoked[jti] = ttl
	return nil
}

func (r *stubRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	_, ok := r.revoked[jti]
	return ok, nil
}

func newTestManager(t *testing.T, revoker Revoker) *Manager {
	t.Helper()
	m, err := NewManager(Config{Secret: "secret", TTL: time.Hour}, revoker, zerolog.Nop())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

// startSession runs Start and returns the issued cookie.
func startSession(t *testing.T, m *Manager, username string) *http.Cookie {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/login", nil), rec)

	if err := m.Start(c, username); err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == m.CookieName() {
			return ck
		}
	}
	t.Fatalf("session cookie not set")
	return nil
}

func contextWithCookie(cookie *http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	if cookie != nil {
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestNewManager_RequiresSecret(t *testing.T) {
	if _, err := NewManager(Config{}, nil, zerolog.Nop()); err == nil {
		t.Fatalf("expected error without secret")
	}
}

func TestManager_StartThenCurrent(t *testing.T) {
	m := newTestManager(t, nil)
	cookie := startSession(t, m, "alice")

	if !cookie.HttpOnly || cookie.SameSite != http.SameSiteLaxMode || cookie.Path != "/" {
		t.Fatalf("unexpected cookie attributes: %+v", cookie)
	}

	c, _ := contextWithCookie(cookie)
	username, ok := m.Current(c)
	if !ok || username != "alice" {
		t.Fatalf("expected alice, got %q (%v)", username, ok)
	}
}

func TestManager_CurrentWithoutCookie(t *testing.T) {
	m := newTestManager(t, nil)
	c, _ := contextWithCookie(nil)

	if _, ok := m.Current(c); ok {
		t.Fatalf("expected no session")
	}
}

func TestManager_RejectsTamperedToken(t *testing.T) {
	m := newTestManager(t, nil)
	cookie := startSession(t, m, "alice")
	cookie.Value += "x"

	c, _ := contextWithCookie(cookie)
	if _, ok := m.Current(c); ok {
		t.Fatalf("tampered token accepted")
	}
}

func TestManager_RejectsForeignSecret(t *testing.T) {
	other, _ := NewManager(Config{Secret: "other"}, nil, zerolog.Nop())
	cookie := startSession(t, other, "mallory")

	c, _ := contextWithCookie(cookie)
	if _, ok := newTestManager(t, nil).Current(c); ok {
		t.Fatalf("token signed with another secret accepted")
	}
}

func TestManager_RejectsOtherAlgorithm(t *testing.T) {
	m := newTestManager(t, nil)
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	c, _ := contextWithCookie(&http.Cookie{Name: m.CookieName(), Value: signed})
	if _, ok := m.Current(c); ok {
		t.Fatalf("HS512 token accepted")
	}
}

func TestManager_RejectsExpiredToken(t *testing.T) {
	m := newTestManager(t, nil)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	cookie := startSession(t, m, "alice")
	m.now = time.Now

	c, _ := contextWithCookie(cookie)
	if _, ok := m.Current(c); ok {
		t.Fatalf("expired token accepted")
	}
}

func TestManager_EndClearsCookieAndRevokes(t *testing.T) {
	revoker := newStubRevoker()
	m := newTestManager(t, revoker)
	cookie := startSession(t, m, "alice")

	c, rec := contextWithCookie(cookie)
	if err := m.End(c); err != nil {
		t.Fatalf("end: %v", err)
	}

	cleared := false
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == m.CookieName() && ck.Value == "" && ck.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatalf("expected cleared cookie in response")
	}
	if len(revoker.revoked) != 1 {
		t.Fatalf("expected one revoked token, got %d", len(revoker.revoked))
	}
	for _, ttl := range revoker.revoked {
		if ttl <= 0 || ttl > time.Hour {
			t.Fatalf("unexpected revocation ttl %v", ttl)
		}
	}

	replay, _ := contextWithCookie(cookie)
	if _, ok := m.Current(replay); ok {
		t.Fatalf("revoked token accepted on replay")
	}
}

func TestManager_EndWithoutSessionIsNoop(t *testing.T) {
	revoker := newStubRevoker()
	m := newTestManager(t, revoker)

	c, _ := contextWithCookie(nil)
	if err := m.End(c); err != nil {
		t.Fatalf("end: %v", err)
	}
	if err := m.End(c); err != nil {
		t.Fatalf("second end: %v", err)
	}
	if len(revoker.revoked) != 0 {
		t.Fatalf("nothing should be revoked")
	}
}

func TestManager_RevokerUnavailableFailsOpen(t *testing.T) {
	revoker := newStubRevoker()
	m := newTestManager(t, revoker)
	cookie := startSession(t, m, "alice")
	revoker.err = errors.New("connection refused")

	c, _ := contextWithCookie(cookie)
	if username, ok := m.Current(c); !ok || username != "alice" {
		t.Fatalf("expected session to survive revocation store outage")
	}
}
