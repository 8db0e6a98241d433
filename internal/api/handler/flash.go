package handler

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const flashSession = "sos_flash"

// NewFlashStore returns the signed cookie store behind flash messages. It is
// installed with session.Middleware.
func NewFlashStore(secret []byte, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// setFlash queues messages for the next rendered page.
func setFlash(c echo.Context, messages ...string) error {
	// A cookie that fails to decode still yields a fresh session.
	sess, err := session.Get(flashSession, c)
	if sess == nil {
		return fmt.Errorf("flash session: %w", err)
	}
	for _, msg := range messages {
		sess.AddFlash(msg)
	}
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return fmt.Errorf("save flash: %w", err)
	}
	return nil
}

// popFlashes returns the queued messages and clears them. A missing or
// tampered cookie yields no messages.
func popFlashes(c echo.Context) []string {
	sess, _ := session.Get(flashSession, c)
	if sess == nil {
		return nil
	}
	pending := sess.Flashes()
	if len(pending) == 0 {
		return nil
	}

	sess.Options.MaxAge = -1
	_ = sess.Save(c.Request(), c.Response())

	messages := make([]string, 0, len(pending))
	for _, f := range pending {
		if msg, ok := f.(string); ok {
			messages = append(messages, msg)
		}
	}
	return messages
}

// redirectWithFlash queues msg and sends the client to path with 303.
func redirectWithFlash(c echo.Context, path, msg string) error {
	if err := setFlash(c, msg); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, path)
}
