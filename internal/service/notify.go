package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"roombooking/internal/config"
)

// SMSSender delivers one text message.
type SMSSender interface {
	Send(ctx context.Context, toNumber, body string) error
}

type twilioMessages interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

type twilioSender struct {
	api  twilioMessages
	from string
	log  *logrus.Logger
}

// NewSMSSender returns a Twilio sender, or one that only logs when the
// credentials are incomplete.
func NewSMSSender(cfg config.TwilioConfig, log *logrus.Logger) SMSSender {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.FromNumber == "" {
		log.Warn("Twilio credentials not fully set, SMS will only be logged")
		return &logSMS{log: log}
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   cfg.AccountSID,
		Password:   cfg.AuthToken,
		AccountSid: cfg.AccountSID,
	})
	return &twilioSender{api: client.Api, from: cfg.FromNumber, log: log}
}

func (s *twilioSender) Send(_ context.Context, toNumber, body string) error {
	if !strings.HasPrefix(toNumber, "+") {
		return fmt.Errorf("phone %q is not in E.164 format", toNumber)
	}
	params := &openapi.CreateMessageParams{}
	params.SetTo(toNumber)
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send to %s: %w", toNumber, err)
	}
	entry := s.log.WithField("to", toNumber)
	if resp != nil && resp.Sid != nil {
		entry = entry.WithField("sid", *resp.Sid)
	}
	entry.Info("sms sent")
	return nil
}

type logSMS struct {
	log *logrus.Logger
}

func (s *logSMS) Send(_ context.Context, toNumber, _ string) error {
	s.log.WithField("to", toNumber).Info("sms delivery disabled, skipping")
	return nil
}
