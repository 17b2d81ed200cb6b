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
	ErrCompetitorNotFound     = errors.New("competitor not found")
	ErrCompetitorSeedConflict = errors.New("competitor seed already taken in this event")
)

type CompetitorRepository interface {
	Create(ctx context.Context, competitor *models.Competitor) error
	GetByID(ctx context.Context, id int) (*models.Competitor, error)
	// ListByEvent returns the event's competitors ordered by seed rank
	// ascending with unseeded entrants last, in registration order.
	ListByEvent(ctx context.Context, eventID int) ([]*models.Competitor, error)
	Update(ctx context.Context, competitor *models.Competitor) error
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
	Delete(ctx context.Context, id int) error
}

type postgresCompetitorRepository struct {
	db *sql.DB
}

func NewPostgresCompetitorRepository(db *sql.DB) CompetitorRepository {
	return &postgresCompetitorRepository{db: db}
}

func (r *postgresCompetitorRepository) Create(ctx context.Context, competitor *models.Competitor) error {
	query := `
		INSERT INTO competitors (event_id, name, seed, affiliation, logo_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		competitor.EventID, competitor.Name, competitor.Seed, competitor.Affiliation, competitor.LogoKey,
	).Scan(&competitor.ID, &competitor.CreatedAt)

	return handleCompetitorConstraintError(err)
}

func scanCompetitor(rowScanner interface{ Scan(...interface{}) error }) (*models.Competitor, error) {
	var c models.Competitor
	err := rowScanner.Scan(&c.ID, &c.EventID, &c.Name, &c.Seed, &c.Affiliation, &c.LogoKey, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompetitorNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *postgresCompetitorRepository) GetByID(ctx context.Context, id int) (*models.Competitor, error) {
	query := `
		SELECT id, event_id, name, seed, affiliation, logo_key, created_at
		FROM competitors WHERE id = $1`
	return scanCompetitor(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresCompetitorRepository) ListByEvent(ctx context.Context, eventID int) ([]*models.Competitor, error) {
	query := `
		SELECT id, event_id, name, seed, affiliation, logo_key, created_at
		FROM competitors
		WHERE event_id = $1
		ORDER BY seed ASC NULLS LAST, id ASC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query competitors for event %d: %w", eventID, err)
	}
	defer rows.Close()

	competitors := make([]*models.Competitor, 0)
	for rows.Next() {
		c, scanErr := scanCompetitor(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan competitor row: %w", scanErr)
		}
		competitors = append(competitors, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during competitor rows iteration: %w", err)
	}
	return competitors, nil
}

func (r *postgresCompetitorRepository) Update(ctx context.Context, competitor *models.Competitor) error {
	query := `
		UPDATE competitors SET name = $1, seed = $2, affiliation = $3
		WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query,
		competitor.Name, competitor.Seed, competitor.Affiliation, competitor.ID)
	if err != nil {
		return handleCompetitorConstraintError(err)
	}
	return checkAffectedRows(result, ErrCompetitorNotFound)
}

func (r *postgresCompetitorRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE competitors SET logo_key = $1 WHERE id = $2`, logoKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCompetitorNotFound)
}

func (r *postgresCompetitorRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM competitors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCompetitorNotFound)
}

func handleCompetitorConstraintError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
		return fmt.Errorf("%w: %v", ErrCompetitorSeedConflict, err)
	}
	return err
}
