package mailer

import (
	"github.com/sirupsen/logrus"
)

// Mailer is the guest-notification capability. Template rendering and
// actual delivery belong to the mail service; the jobs only hand over
// rendered HTML.
type Mailer interface {
	Send(to, subject, html string) error
}

// LogMailer records deliveries instead of sending them. Deployments wire
// the real mail service implementation in its place.
type LogMailer struct {
	from string
	log  *logrus.Entry
}

func NewLogMailer(from string, log *logrus.Logger) *LogMailer {
	return &LogMailer{from: from, log: log.WithField("component", "mailer")}
}

func (m *LogMailer) Send(to, subject, html string) error {
	m.log.WithFields(logrus.Fields{
		"from":    m.from,
		"to":      to,
		"subject": subject,
		"bytes":   len(html),
	}).Info("mail delivery recorded")
	return nil
}
