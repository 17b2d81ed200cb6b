package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/Marling1212/ntu-sports-sub001/models"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchEventInvalid      = errors.New("match event conflict or invalid")
	ErrMatchCompetitorInvalid = errors.New("match competitor conflict or invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByEvent(ctx context.Context, eventID int, round *int, status *models.MatchStatus) ([]*models.Match, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, match *models.Match) error
	UpdateStatus(ctx context.Context, id int, status models.MatchStatus) error
	UpdateCompetitors(ctx context.Context, exec SQLExecutor, id int, competitor1ID, competitor2ID *int) error
	DeleteEliminationRounds(ctx context.Context, exec SQLExecutor, eventID int) error
	DeleteByEvent(ctx context.Context, exec SQLExecutor, eventID int) error
}

// handleMatchConstraintError maps Postgres constraint violations onto the
// repository's sentinel errors.
func handleMatchConstraintError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" { // foreign_key_violation
		switch {
		case strings.Contains(pqErr.Constraint, "event"):
			return fmt.Errorf("%w: %v", ErrMatchEventInvalid, err)
		case strings.Contains(pqErr.Constraint, "competitor"), strings.Contains(pqErr.Constraint, "winner"):
			return fmt.Errorf("%w: %v", ErrMatchCompetitorInvalid, err)
		}
	}
	return err
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, event_id, round, match_number, competitor1_id, competitor2_id,
	       score1, score2, status, outcome, winner_id, match_time, court_label, created_at`

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches
			(event_id, round, match_number, competitor1_id, competitor2_id,
			 score1, score2, status, outcome, winner_id, match_time, court_label)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		match.EventID,
		match.Round,
		match.MatchNumber,
		match.Competitor1ID,
		match.Competitor2ID,
		match.Score1,
		match.Score2,
		match.Status,
		match.Outcome,
		match.WinnerID,
		match.MatchTime,
		match.CourtLabel,
	).Scan(&match.ID, &match.CreatedAt)

	return handleMatchConstraintError(err)
}

func (r *postgresMatchRepository) CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error {
	for _, match := range matches {
		if err := r.Create(ctx, exec, match); err != nil {
			return fmt.Errorf("failed to insert match R%dM%d: %w", match.Round, match.MatchNumber, err)
		}
	}
	return nil
}

func scanMatch(rowScanner interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var m models.Match
	err := rowScanner.Scan(
		&m.ID, &m.EventID, &m.Round, &m.MatchNumber, &m.Competitor1ID, &m.Competitor2ID,
		&m.Score1, &m.Score2, &m.Status, &m.Outcome, &m.WinnerID, &m.MatchTime, &m.CourtLabel, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return scanMatch(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) ListByEvent(ctx context.Context, eventID int, round *int, status *models.MatchStatus) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE event_id = $1`)

	args := []interface{}{eventID}
	placeholder := 2

	if round != nil {
		queryBuilder.WriteString(" AND round = $" + strconv.Itoa(placeholder))
		args = append(args, *round)
		placeholder++
	}
	if status != nil {
		queryBuilder.WriteString(" AND status = $" + strconv.Itoa(placeholder))
		args = append(args, *status)
	}
	queryBuilder.WriteString(" ORDER BY round ASC, match_number ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for event %d: %w", eventID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches
		SET score1 = $1, score2 = $2, status = $3, outcome = $4, winner_id = $5
		WHERE id = $6`

	result, err := executor.ExecContext(ctx, query,
		match.Score1, match.Score2, match.Status, match.Outcome, match.WinnerID, match.ID)
	if err != nil {
		return handleMatchConstraintError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, id int, status models.MatchStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE matches SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateCompetitors(ctx context.Context, exec SQLExecutor, id int, competitor1ID, competitor2ID *int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE matches SET competitor1_id = $1, competitor2_id = $2 WHERE id = $3`
	result, err := executor.ExecContext(ctx, query, competitor1ID, competitor2ID, id)
	if err != nil {
		return handleMatchConstraintError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// DeleteEliminationRounds removes every bracket match (round >= 1) of the
// event. Re-seeding replaces the bracket wholesale so no match of a previous
// shape survives; round-0 fixtures are untouched.
func (r *postgresMatchRepository) DeleteEliminationRounds(ctx context.Context, exec SQLExecutor, eventID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM matches WHERE event_id = $1 AND round >= 1`, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete elimination rounds for event %d: %w", eventID, err)
	}
	return nil
}

func (r *postgresMatchRepository) DeleteByEvent(ctx context.Context, exec SQLExecutor, eventID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM matches WHERE event_id = $1`, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete matches for event %d: %w", eventID, err)
	}
	return nil
}
