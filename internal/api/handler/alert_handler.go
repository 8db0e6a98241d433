package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sosalert/sos-service/internal/api/middleware"
	"github.com/sosalert/sos-service/internal/core/domain"
	"github.com/sosalert/sos-service/internal/core/ports"
)

type AlertHandler struct {
	accounts ports.AccountService
	alerts   ports.AlertService
}

func NewAlertHandler(accounts ports.AccountService, alerts ports.AlertService) *AlertHandler {
	return &AlertHandler{accounts: accounts, alerts: alerts}
}

// sosRequest is the browser's current position. Values are passed through
// to the message as sent.
type sosRequest struct {
	Latitude  domain.Coordinate `json:"latitude" validate:"required" swaggertype:"string" example:"12.9716"`
	Longitude domain.Coordinate `json:"longitude" validate:"required" swaggertype:"string" example:"77.5946"`
}

// SendSOS texts the caller's emergency contact with a map link to the
// submitted position.
//
// @Summary      Send an SOS alert
// @Tags         sos
// @Accept       json
// @Param        body  body  sosRequest  true  "Current position"
// @Success      204
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /sos [post]
func (h *AlertHandler) SendSOS(c echo.Context) error {
	username, ok := middleware.Username(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	var req sosRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.accounts.FindByUsername(c.Request().Context(), username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return fmt.Errorf("%w: session user %q no longer exists", domain.ErrUnauthorized, username)
		}
		return err
	}

	if err := h.alerts.SendAlert(c.Request().Context(), user, domain.Location{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
