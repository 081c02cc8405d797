package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(host string, port int, user, password, from string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

func (s *SMTPSender) message(e Email) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", e.To...)
	m.SetHeader("Subject", e.Subject)
	m.SetBody("text/plain", e.Body)

	return m
}

func (s *SMTPSender) Send(ctx context.Context, e Email) error {
	if len(e.To) == 0 {
		return fmt.Errorf("sending %q: no recipients", e.Subject)
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- s.dialer.DialAndSend(s.message(e))
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("sending %q: %w", e.Subject, err)
		}

		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
