package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sosalert/sos-service/internal/core/domain"
	"github.com/sosalert/sos-service/internal/core/ports"
)

type stubProvider struct {
	sent        []ports.SMSMessage
	err         error
	hasDeadline bool
}

func (p *stubProvider) Send(ctx context.Context, msg ports.SMSMessage) (string, error) {
	_, p.hasDeadline = ctx.Deadline()
	p.sent = append(p.sent, msg)
	if p.err != nil {
		return "", p.err
	}
	return "SM123", nil
}

var testUser = &domain.User{ID: 7, Username: "alice", ContactNumber: "+919876543210"}

func TestAlertService_SendAlert_Success(t *testing.T) {
	provider := &stubProvider{}
	svc := NewAlertService(provider, "+15005550006", time.Second, zerolog.Nop())

	err := svc.SendAlert(context.Background(), testUser, domain.Location{Latitude: "12.9", Longitude: "77.6"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(provider.sent) != 1 {
		t.Fatalf("expected exactly one send, got %d", len(provider.sent))
	}

	msg := provider.sent[0]
	if msg.To != "+919876543210" {
		t.Errorf("unexpected destination %q", msg.To)
	}
	if msg.From != "+15005550006" {
		t.Errorf("unexpected sender %q", msg.From)
	}
	if !strings.Contains(msg.Body, "https://maps.google.com/?q=12.9,77.6") {
		t.Errorf("body missing map link: %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "Name: alice") {
		t.Errorf("body missing name: %q", msg.Body)
	}
	if !provider.hasDeadline {
		t.Errorf("expected provider call to carry a deadline")
	}
}

func TestAlertService_SendAlert_ProviderError(t *testing.T) {
	provider := &stubProvider{err: errors.New("twilio: 21211 invalid 'To' number")}
	svc := NewAlertService(provider, "+15005550006", 0, zerolog.Nop())

	err := svc.SendAlert(context.Background(), testUser, domain.Location{Latitude: "1", Longitude: "2"})
	if !errors.Is(err, domain.ErrDispatchFailure) {
		t.Fatalf("expected ErrDispatchFailure, got %v", err)
	}
	if !errors.Is(err, provider.err) {
		t.Fatalf("expected provider error to be wrapped, got %v", err)
	}
	if len(provider.sent) != 1 {
		t.Fatalf("expected a single attempt without retry, got %d", len(provider.sent))
	}
}

func TestAlertService_SendAlert_PassesCoordinatesVerbatim(t *testing.T) {
	provider := &stubProvider{}
	svc := NewAlertService(provider, "+1", time.Second, zerolog.Nop())

	_ = svc.SendAlert(context.Background(), testUser, domain.Location{Latitude: "999", Longitude: "north"})
	if !strings.Contains(provider.sent[0].Body, "?q=999,north") {
		t.Fatalf("coordinates were altered: %q", provider.sent[0].Body)
	}
}
