package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Marling1212/ntu-sports-sub001/models"
)

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrEventNameConflict = errors.New("event name already exists")
)

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int) (*models.Event, error)
	List(ctx context.Context, limit, offset int) ([]*models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	UpdateStatus(ctx context.Context, id int, status models.EventStatus) error
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
	Delete(ctx context.Context, id int) error
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

const eventColumns = `id, name, description, sport, type, organizer_id, location,
	       start_date, end_date, status, logo_key, created_at`

func (r *postgresEventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events
			(name, description, sport, type, organizer_id, location, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		event.Name, event.Description, event.Sport, event.Type, event.OrganizerID,
		event.Location, event.StartDate, event.EndDate, event.Status,
	).Scan(&event.ID, &event.CreatedAt)

	return handleEventConstraintError(err)
}

func scanEvent(rowScanner interface{ Scan(...interface{}) error }) (*models.Event, error) {
	var e models.Event
	err := rowScanner.Scan(
		&e.ID, &e.Name, &e.Description, &e.Sport, &e.Type, &e.OrganizerID, &e.Location,
		&e.StartDate, &e.EndDate, &e.Status, &e.LogoKey, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *postgresEventRepository) GetByID(ctx context.Context, id int) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return scanEvent(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresEventRepository) List(ctx context.Context, limit, offset int) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY start_date DESC, id DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := make([]*models.Event, 0)
	for rows.Next() {
		e, scanErr := scanEvent(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", scanErr)
		}
		events = append(events, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during event rows iteration: %w", err)
	}
	return events, nil
}

func (r *postgresEventRepository) Update(ctx context.Context, event *models.Event) error {
	query := `
		UPDATE events
		SET name = $1, description = $2, sport = $3, type = $4, location = $5,
		    start_date = $6, end_date = $7, status = $8
		WHERE id = $9`
	result, err := r.db.ExecContext(ctx, query,
		event.Name, event.Description, event.Sport, event.Type, event.Location,
		event.StartDate, event.EndDate, event.Status, event.ID)
	if err != nil {
		return handleEventConstraintError(err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) UpdateStatus(ctx context.Context, id int, status models.EventStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE events SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE events SET logo_key = $1 WHERE id = $2`, logoKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func handleEventConstraintError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%w: %v", ErrEventNameConflict, err)
	}
	return err
}
