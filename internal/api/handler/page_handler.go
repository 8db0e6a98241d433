package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sosalert/sos-service/internal/api/middleware"
	"github.com/sosalert/sos-service/internal/core/domain"
	"github.com/sosalert/sos-service/internal/core/ports"
)

const (
	msgUsernameTaken      = "Username already exists!"
	msgRegistered         = "Registered successfully!"
	msgInvalidCredentials = "Invalid credentials"
	msgFieldsRequired     = "Username, password and contact number are required."
)

// Sessions starts and ends the cookie session of a client.
type Sessions interface {
	Start(c echo.Context, username string) error
	End(c echo.Context) error
}

// PageHandler serves the HTML pages and the form posts behind them.
type PageHandler struct {
	accounts ports.AccountService
	sessions Sessions
	log      zerolog.Logger
}

func NewPageHandler(accounts ports.AccountService, sessions Sessions, log zerolog.Logger) *PageHandler {
	return &PageHandler{accounts: accounts, sessions: sessions, log: log}
}

type registerForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	Contact  string `form:"contact" validate:"required"`
}

type loginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

func (h *PageHandler) render(c echo.Context, status int, page string) error {
	username, _ := middleware.Username(c)
	return c.Render(status, page, pageData{Username: username, Flashes: popFlashes(c)})
}

// Home renders the landing page.
func (h *PageHandler) Home(c echo.Context) error {
	return h.render(c, http.StatusOK, PageIndex)
}

func (h *PageHandler) RegisterForm(c echo.Context) error {
	return h.render(c, http.StatusOK, PageRegister)
}

// Register creates the account and sends the client to the login page. Any
// rejection goes back to the registration form with a flash message.
func (h *PageHandler) Register(c echo.Context) error {
	var form registerForm
	if err := c.Bind(&form); err != nil {
		return redirectWithFlash(c, "/register", msgFieldsRequired)
	}
	if err := c.Validate(&form); err != nil {
		return redirectWithFlash(c, "/register", msgFieldsRequired)
	}

	_, err := h.accounts.Register(c.Request().Context(), form.Username, form.Password, form.Contact)
	switch {
	case errors.Is(err, domain.ErrUsernameTaken):
		return redirectWithFlash(c, "/register", msgUsernameTaken)
	case errors.Is(err, domain.ErrValidation):
		return redirectWithFlash(c, "/register", msgFieldsRequired)
	case err != nil:
		return err
	}

	return redirectWithFlash(c, "/login", msgRegistered)
}

func (h *PageHandler) LoginForm(c echo.Context) error {
	return h.render(c, http.StatusOK, PageLogin)
}

// Login starts a session on valid credentials. Bad credentials re-render the
// login form in place.
func (h *PageHandler) Login(c echo.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		return h.invalidLogin(c)
	}

	user, err := h.accounts.Authenticate(c.Request().Context(), form.Username, form.Password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return h.invalidLogin(c)
	}
	if err != nil {
		return err
	}

	if err := h.sessions.Start(c, user.Username); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *PageHandler) invalidLogin(c echo.Context) error {
	username, _ := middleware.Username(c)
	return c.Render(http.StatusOK, PageLogin, pageData{
		Username: username,
		Flashes:  append(popFlashes(c), msgInvalidCredentials),
	})
}

// Dashboard renders the SOS button. Routed behind RequirePageSession.
func (h *PageHandler) Dashboard(c echo.Context) error {
	return h.render(c, http.StatusOK, PageDashboard)
}

// Logout ends the session, if any, and returns to the landing page.
func (h *PageHandler) Logout(c echo.Context) error {
	if err := h.sessions.End(c); err != nil {
		h.log.Warn().Err(err).Msg("logout: session revocation failed")
	}
	return c.Redirect(http.StatusFound, "/")
}
