// Package sms adapts the Twilio REST API to ports.SMSProvider.
package sms

import (
	"context"
	"fmt"
	"time"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/sosalert/sos-service/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

// Config holds the Twilio account credentials.
type Config struct {
	AccountSID string
	AuthToken  string
	Timeout    time.Duration
}

// messageCreator is the subset of the Twilio API used here.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioProvider sends SMS through Twilio's Messages resource.
type TwilioProvider struct {
	api messageCreator
}

// NewTwilioProvider builds a provider whose HTTP calls are bounded by
// cfg.Timeout (defaultTimeout when unset).
func NewTwilioProvider(cfg Config) *TwilioProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	client.SetTimeout(timeout)

	return &TwilioProvider{api: client.Api}
}

type sendResult struct {
	sid string
	err error
}

// Send creates the message and returns its SID. The Twilio client has no
// context support, so the call runs in its own goroutine and Send returns as
// soon as ctx is done; the HTTP timeout still ends the abandoned request.
func (p *TwilioProvider) Send(ctx context.Context, msg ports.SMSMessage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("twilio send: %w", err)
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(msg.To)
	params.SetFrom(msg.From)
	params.SetBody(msg.Body)

	done := make(chan sendResult, 1)
	go func() {
		resp, err := p.api.CreateMessage(params)
		if err != nil {
			done <- sendResult{err: err}
			return
		}
		var sid string
		if resp != nil && resp.Sid != nil {
			sid = *resp.Sid
		}
		done <- sendResult{sid: sid}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("twilio send: %w", ctx.Err())
	case res := <-done:
		if res.err != nil {
			return "", fmt.Errorf("twilio send: %w", res.err)
		}
		return res.sid, nil
	}
}
