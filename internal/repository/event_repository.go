package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventix/eventix/internal/domain"
)

type EventRepository interface {
	Create(ctx context.Context, e *domain.Event) (*domain.Event, error)
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	List(ctx context.Context, filter domain.EventFilter, now time.Time, limit, offset int) ([]domain.Event, int, error)
	Categories(ctx context.Context) ([]string, error)
	ListByOrganizer(ctx context.Context, organizerID string, limit, offset int) ([]domain.Event, int, error)
	Update(ctx context.Context, id string, patch domain.EventPatch) (*domain.Event, error)
	Delete(ctx context.Context, id string) (bool, error)
	CountByOrganizer(ctx context.Context, organizerID string, now time.Time) (total, upcoming int, err error)

	// Reserve atomically checks and decrements the remaining ticket
	// counter for one event. Release is its compensating increment.
	Reserve(ctx context.Context, id string, now time.Time) error
	Release(ctx context.Context, id string) error
}

type eventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &eventRepository{pool: pool}
}

const eventCols = `id, title, description, category, location, date, price,
image_url, available_tickets, organizer_name, organizer_id, created_at, updated_at`

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Category, &e.Location, &e.Date, &e.Price,
		&e.ImageURL, &e.AvailableTickets, &e.OrganizerName, &e.OrganizerID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	const q = `
		INSERT INTO events (title, description, category, location, date, price,
			image_url, available_tickets, organizer_name, organizer_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + eventCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanEvent(r.pool.QueryRow(ctx, q,
		e.Title, e.Description, e.Category, e.Location, e.Date, e.Price,
		e.ImageURL, e.AvailableTickets, e.OrganizerName, e.OrganizerID,
	))
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	const q = `SELECT ` + eventCols + ` FROM events WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	e, err := scanEvent(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows || isInvalidUUID(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter, now time.Time, limit, offset int) ([]domain.Event, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	where := make([]string, 0, 3)
	args := make([]any, 0, 5)

	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d OR location ILIKE $%d)", n, n, n))
	}
	if filter.UpcomingOnly {
		args = append(args, now)
		where = append(where, fmt.Sprintf("date > $%d", len(args)))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM events`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	args = append(args, limit, offset)
	q := fmt.Sprintf(`SELECT %s FROM events%s ORDER BY date LIMIT $%d OFFSET $%d`,
		eventCols, clause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := make([]domain.Event, 0, limit)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, *e)
	}
	return events, total, rows.Err()
}

func (r *eventRepository) Categories(ctx context.Context) ([]string, error) {
	const q = `SELECT DISTINCT category FROM events ORDER BY category`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *eventRepository) ListByOrganizer(ctx context.Context, organizerID string, limit, offset int) ([]domain.Event, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM events WHERE organizer_id = $1`, organizerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count organizer events: %w", err)
	}

	const q = `SELECT ` + eventCols + ` FROM events WHERE organizer_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, q, organizerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list organizer events: %w", err)
	}
	defer rows.Close()

	events := make([]domain.Event, 0, limit)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, *e)
	}
	return events, total, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, id string, patch domain.EventPatch) (*domain.Event, error) {
	const q = `
		UPDATE events
		SET
			title             = COALESCE($2, title),
			description       = COALESCE($3, description),
			category          = COALESCE($4, category),
			location          = COALESCE($5, location),
			date              = COALESCE($6, date),
			price             = COALESCE($7, price),
			image_url         = COALESCE($8, image_url),
			available_tickets = COALESCE($9, available_tickets),
			updated_at        = now()
		WHERE id = $1
		RETURNING ` + eventCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	e, err := scanEvent(r.pool.QueryRow(ctx, q,
		id,
		patch.Title,
		patch.Description,
		patch.Category,
		patch.Location,
		patch.Date,
		patch.Price,
		patch.ImageURL,
		patch.AvailableTickets,
	))
	if err == pgx.ErrNoRows || isInvalidUUID(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) (bool, error) {
	const q = `DELETE FROM events WHERE id = $1`
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

func (r *eventRepository) CountByOrganizer(ctx context.Context, organizerID string, now time.Time) (int, int, error) {
	const q = `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE date > $2)
		FROM events
		WHERE organizer_id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var total, upcoming int
	if err := r.pool.QueryRow(ctx, q, organizerID, now).Scan(&total, &upcoming); err != nil {
		return 0, 0, fmt.Errorf("count organizer events: %w", err)
	}
	return total, upcoming, nil
}

// Reserve decrements in a single conditional statement so concurrent
// purchases can never push the counter below zero. On a miss it reads
// the row once to tell the caller why; a miss caused purely by a racing
// writer is retried.
func (r *eventRepository) Reserve(ctx context.Context, id string, now time.Time) error {
	const q = `
		UPDATE events
		SET available_tickets = available_tickets - 1, updated_at = now()
		WHERE id = $1 AND available_tickets > 0 AND date > $2`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	for attempt := 0; attempt < 3; attempt++ {
		ct, err := r.pool.Exec(ctx, q, id, now)
		if err != nil {
			if isInvalidUUID(err) {
				return domain.ErrEventNotFound
			}
			return fmt.Errorf("reserve ticket: %w", err)
		}
		if ct.RowsAffected() > 0 {
			return nil
		}

		var available int
		var date time.Time
		err = r.pool.QueryRow(ctx, `SELECT available_tickets, date FROM events WHERE id = $1`, id).Scan(&available, &date)
		if err == pgx.ErrNoRows || isInvalidUUID(err) {
			return domain.ErrEventNotFound
		}
		if err != nil {
			return fmt.Errorf("classify reservation failure: %w", err)
		}
		if reason := classifyReserveMiss(available, date, now); reason != nil {
			return reason
		}
		// Counter moved between the two statements; try again.
	}
	return fmt.Errorf("reserve ticket for event %s: %w", id, errReserveContention)
}

// errReserveContention reports a reservation that kept losing the race
// against concurrent writers. The event still had tickets on every
// read, so this must not surface as a sold-out answer.
var errReserveContention = fmt.Errorf("reservation retries exhausted")

// classifyReserveMiss explains why a conditional decrement matched no
// rows. A nil return means the row itself was sellable and the miss
// came from a racing writer.
func classifyReserveMiss(available int, date, now time.Time) error {
	if available <= 0 {
		return domain.ErrSoldOut
	}
	if !date.After(now) {
		return domain.ErrEventEnded
	}
	return nil
}

func (r *eventRepository) Release(ctx context.Context, id string) error {
	const q = `UPDATE events SET available_tickets = available_tickets + 1, updated_at = now() WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ct, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("release ticket: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}
