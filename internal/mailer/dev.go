package mailer

import (
	"github.com/eventix/eventix/internal/domain"
	"github.com/eventix/eventix/pkg/logger"
)

// DevMailer logs instead of sending; used when EMAIL_DEV_MODE is set.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendTicketConfirmation(toEmail, toName string, ticket *domain.Ticket) error {
	logger.Info("[DEV MAIL] Ticket confirmation",
		"to", toEmail,
		"name", toName,
		"ticket_id", ticket.ID,
		"event_title", ticket.EventTitle,
		"event_date", ticket.EventDate,
	)
	return nil
}
