package service

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Mail is one outgoing message
type Mail struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}

// logMailer writes messages to the log instead of a mail server
type logMailer struct {
	log *logrus.Logger
}

func NewLogMailer(log *logrus.Logger) Mailer {
	return &logMailer{log: log}
}

func (m *logMailer) Send(ctx context.Context, mail Mail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.log.WithFields(logrus.Fields{
		"to":      mail.To,
		"subject": mail.Subject,
	}).Info(mail.Body)
	return nil
}
