package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventix/eventix/internal/domain"
)

type TicketRepository interface {
	Insert(ctx context.Context, t *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByCode(ctx context.Context, code string) (*domain.Ticket, error)
	ListByUser(ctx context.Context, userID string, status *domain.TicketStatus, limit, offset int) ([]domain.Ticket, int, error)
	ListAttendees(ctx context.Context, eventID string) ([]domain.Attendee, error)
	Delete(ctx context.Context, id string) (bool, error)
	SalesByOrganizer(ctx context.Context, organizerID string) (sold int, revenue float64, err error)

	// UpdateStatus is a compare-and-swap on one ticket's status.
	UpdateStatus(ctx context.Context, id string, from, to domain.TicketStatus) (bool, error)
	// MarkUsedByCode atomically moves a pending or active ticket for an
	// event that has not yet started to used, keyed by its unique code.
	// Returns (nil, nil) when no row qualified.
	MarkUsedByCode(ctx context.Context, code string, now time.Time) (*domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketCols = `id, event_id, user_id, event_title, event_location, event_date,
status, purchase_date, price, qr_code, seat_number`

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var t domain.Ticket
	err := row.Scan(
		&t.ID, &t.EventID, &t.UserID, &t.EventTitle, &t.EventLocation, &t.EventDate,
		&t.Status, &t.PurchaseDate, &t.Price, &t.QRCode, &t.SeatNumber,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *ticketRepository) Insert(ctx context.Context, t *domain.Ticket) error {
	const q = `
		INSERT INTO tickets (id, event_id, user_id, event_title, event_location, event_date,
			status, purchase_date, price, qr_code, seat_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q,
		t.ID, t.EventID, t.UserID, t.EventTitle, t.EventLocation, t.EventDate,
		t.Status, t.PurchaseDate, t.Price, t.QRCode, t.SeatNumber,
	)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const q = `SELECT ` + ticketCols + ` FROM tickets WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	t, err := scanTicket(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows || isInvalidUUID(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *ticketRepository) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	const q = `SELECT ` + ticketCols + ` FROM tickets WHERE qr_code = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	t, err := scanTicket(r.pool.QueryRow(ctx, q, code))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *ticketRepository) ListByUser(ctx context.Context, userID string, status *domain.TicketStatus, limit, offset int) ([]domain.Ticket, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	countQ := `SELECT COUNT(*) FROM tickets WHERE user_id = $1`
	listQ := `SELECT ` + ticketCols + ` FROM tickets WHERE user_id = $1`
	args := []any{userID}

	if status != nil {
		args = append(args, *status)
		countQ += ` AND status = $2`
		listQ += ` AND status = $2`
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		if isInvalidUUID(err) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("count tickets: %w", err)
	}

	args = append(args, limit, offset)
	listQ += fmt.Sprintf(` ORDER BY event_date DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, listQ, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0, limit)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, 0, err
		}
		tickets = append(tickets, *t)
	}
	return tickets, total, rows.Err()
}

func (r *ticketRepository) ListAttendees(ctx context.Context, eventID string) ([]domain.Attendee, error) {
	const q = `
		SELECT t.id, u.name, u.email, NULLIF(u.phone, ''), t.status, t.purchase_date, t.qr_code
		FROM tickets t
		JOIN users u ON u.id = t.user_id
		WHERE t.event_id = $1
		ORDER BY t.purchase_date DESC`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, eventID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	defer rows.Close()

	attendees := make([]domain.Attendee, 0)
	for rows.Next() {
		var a domain.Attendee
		if err := rows.Scan(&a.TicketID, &a.UserName, &a.UserEmail, &a.UserPhone, &a.Status, &a.PurchaseDate, &a.QRCode); err != nil {
			return nil, err
		}
		attendees = append(attendees, a)
	}
	return attendees, rows.Err()
}

func (r *ticketRepository) Delete(ctx context.Context, id string) (bool, error) {
	const q = `DELETE FROM tickets WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ct, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		if isInvalidUUID(err) {
			return false, nil
		}
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *ticketRepository) SalesByOrganizer(ctx context.Context, organizerID string) (int, float64, error) {
	const q = `
		SELECT COUNT(t.id), COALESCE(SUM(t.price), 0)
		FROM tickets t
		JOIN events e ON e.id = t.event_id
		WHERE e.organizer_id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var sold int
	var revenue float64
	if err := r.pool.QueryRow(ctx, q, organizerID).Scan(&sold, &revenue); err != nil {
		return 0, 0, fmt.Errorf("sales by organizer: %w", err)
	}
	return sold, revenue, nil
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id string, from, to domain.TicketStatus) (bool, error) {
	const q = `UPDATE tickets SET status = $3 WHERE id = $1 AND status = $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ct, err := r.pool.Exec(ctx, q, id, from, to)
	if err != nil {
		if isInvalidUUID(err) {
			return false, nil
		}
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *ticketRepository) MarkUsedByCode(ctx context.Context, code string, now time.Time) (*domain.Ticket, error) {
	const q = `
		UPDATE tickets
		SET status = 'used'
		WHERE qr_code = $1 AND status IN ('pending', 'active') AND event_date >= $2
		RETURNING ` + ticketCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	t, err := scanTicket(r.pool.QueryRow(ctx, q, code, now))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mark used: %w", err)
	}
	return t, nil
}
