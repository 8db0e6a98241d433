package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sosalert/sos-service/internal/metrics"
	"github.com/sosalert/sos-service/internal/core/domain"
	"github.com/sosalert/sos-service/internal/core/ports"
)

const defaultSendTimeout = 10 * time.Second

type alertService struct {
	provider ports.SMSProvider
	from     string
	timeout  time.Duration
	log      zerolog.Logger
}

// NewAlertService returns an AlertService that sends alerts through provider
// from the given sender number. Each send is bounded by timeout; when
// timeout <= 0, defaultSendTimeout is used.
func NewAlertService(provider ports.SMSProvider, from string, timeout time.Duration, log zerolog.Logger) ports.AlertService {
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &alertService{
		provider: provider,
		from:     from,
		timeout:  timeout,
		log:      log,
	}
}

// SendAlert issues exactly one SMS to the user's contact. There is no retry;
// a provider error is returned wrapped in domain.ErrDispatchFailure.
func (s *alertService) SendAlert(ctx context.Context, user *domain.User, loc domain.Location) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	msg := ports.SMSMessage{
		To:   user.ContactNumber,
		From: s.from,
		Body: domain.AlertMessage(user.Username, loc),
	}

	start := time.Now()
	sid, err := s.provider.Send(ctx, msg)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		metrics.AlertsDispatchedTotal.WithLabelValues("failed").Inc()
		metrics.AlertDispatchDuration.WithLabelValues("failed").Observe(elapsed)
		s.log.Error().Err(err).
			Int64("user_id", user.ID).
			Str("to", user.ContactNumber).
			Msg("alert dispatch failed")
		return fmt.Errorf("%w: %w", domain.ErrDispatchFailure, err)
	}

	metrics.AlertsDispatchedTotal.WithLabelValues("sent").Inc()
	metrics.AlertDispatchDuration.WithLabelValues("sent").Observe(elapsed)
	s.log.Info().
		Int64("user_id", user.ID).
		Str("to", user.ContactNumber).
		Str("sid", sid).
		Msg("alert dispatched")
	return nil
}
