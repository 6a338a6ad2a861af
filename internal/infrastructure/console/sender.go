// Package console provides an SMS sender that writes messages to the log
// instead of a carrier. Used in development.
package console

import (
	"context"
	"log/slog"
)

type Sender struct {
	log *slog.Logger
}

func NewSender(log *slog.Logger) *Sender {
	if log == nil {
		log = slog.Default()
	}
	return &Sender{log: log}
}

func (s *Sender) SendSMS(ctx context.Context, to, message string) error {
	s.log.InfoContext(ctx, "sms", "to", to, "message", message)
	return nil
}
