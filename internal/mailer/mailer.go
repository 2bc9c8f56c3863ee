package mailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"

	"github.com/eventix/eventix/internal/domain"
)

type Service interface {
	SendTicketConfirmation(toEmail, toName string, ticket *domain.Ticket) error
}

type Mailer struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	Enabled bool
}

func NewMailer(apiKey, fromName, fromEmail string) *Mailer {
	m := &Mailer{
		Enabled: apiKey != "" && fromEmail != "",
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}
	if m.Enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}
	return m
}

func (m *Mailer) send(toEmail, toName, subject, text, html string) (string, error) {
	if !m.Enabled {
		return "", errors.New("mailer disabled (missing MAILERSEND_API_KEY or EMAIL_FROM)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)
	if strings.TrimSpace(text) != "" {
		msg.SetText(text)
	}
	if strings.TrimSpace(html) != "" {
		msg.SetHTML(html)
	}

	res, err := m.client.Email.Send(ctx, msg)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return "", fmt.Errorf("mailersend error: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	// MailerSend uses X-Message-Id
	return res.Header.Get("X-Message-Id"), nil
}

func (m *Mailer) SendTicketConfirmation(toEmail, toName string, ticket *domain.Ticket) error {
	subject := fmt.Sprintf("Your ticket for %s", ticket.EventTitle)
	when := ticket.EventDate.Format("Mon, 2 Jan 2006 15:04 MST")
	text := fmt.Sprintf("Hi %s,\n\nYour ticket for %s at %s on %s is confirmed.\nShow the QR code in the app at the entrance.\n\nTicket ID: %s",
		toName, ticket.EventTitle, ticket.EventLocation, when, ticket.ID)
	html := fmt.Sprintf(`<p>Hi %s,</p><p>Your ticket for <b>%s</b> at %s on %s is confirmed.</p><p>Show the QR code in the app at the entrance.</p><p>Ticket ID: %s</p>`,
		toName, ticket.EventTitle, ticket.EventLocation, when, ticket.ID)

	_, err := m.send(toEmail, toName, subject, text, html)
	return err
}
