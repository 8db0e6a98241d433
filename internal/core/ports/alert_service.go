package ports

import (
	"context"

	"github.com/sosalert/sos-service/internal/core/domain"
)

// SMSMessage is a single outbound text message.
type SMSMessage struct {
	To   string
	From string
	Body string
}

// SMSProvider hands a message to an external messaging network. The returned
// string is the provider's handle for the message; delivery is not confirmed.
type SMSProvider interface {
	Send(ctx context.Context, msg SMSMessage) (string, error)
}

// AlertService dispatches SOS alerts.
type AlertService interface {
	SendAlert(ctx context.Context, user *domain.User, loc domain.Location) error
}
