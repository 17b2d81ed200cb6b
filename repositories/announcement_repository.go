package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Marling1212/ntu-sports-sub001/models"
)

var ErrAnnouncementNotFound = errors.New("announcement not found")

// AnnouncementRepository persists event announcements plus the per-round
// "already announced" side table that keeps round-completion announcements
// from firing twice.
type AnnouncementRepository interface {
	Create(ctx context.Context, exec SQLExecutor, announcement *models.Announcement) error
	ListByEvent(ctx context.Context, eventID int) ([]*models.Announcement, error)
	HasRoundAnnouncement(ctx context.Context, eventID, round int) (bool, error)
	MarkRoundAnnouncement(ctx context.Context, exec SQLExecutor, eventID, round int) error
}

type postgresAnnouncementRepository struct {
	db *sql.DB
}

func NewPostgresAnnouncementRepository(db *sql.DB) AnnouncementRepository {
	return &postgresAnnouncementRepository{db: db}
}

func (r *postgresAnnouncementRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresAnnouncementRepository) Create(ctx context.Context, exec SQLExecutor, announcement *models.Announcement) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO announcements (event_id, title, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	return executor.QueryRowContext(ctx, query,
		announcement.EventID, announcement.Title, announcement.Content,
	).Scan(&announcement.ID, &announcement.CreatedAt)
}

func (r *postgresAnnouncementRepository) ListByEvent(ctx context.Context, eventID int) ([]*models.Announcement, error) {
	query := `
		SELECT id, event_id, title, content, created_at
		FROM announcements
		WHERE event_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query announcements for event %d: %w", eventID, err)
	}
	defer rows.Close()

	announcements := make([]*models.Announcement, 0)
	for rows.Next() {
		var a models.Announcement
		if scanErr := rows.Scan(&a.ID, &a.EventID, &a.Title, &a.Content, &a.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan announcement row: %w", scanErr)
		}
		announcements = append(announcements, &a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during announcement rows iteration: %w", err)
	}
	return announcements, nil
}

func (r *postgresAnnouncementRepository) HasRoundAnnouncement(ctx context.Context, eventID, round int) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM round_announcements WHERE event_id = $1 AND round = $2)`
	if err := r.db.QueryRowContext(ctx, query, eventID, round).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check round announcement for event %d round %d: %w", eventID, round, err)
	}
	return exists, nil
}

func (r *postgresAnnouncementRepository) MarkRoundAnnouncement(ctx context.Context, exec SQLExecutor, eventID, round int) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO round_announcements (event_id, round)
		VALUES ($1, $2)
		ON CONFLICT (event_id, round) DO NOTHING`
	if _, err := executor.ExecContext(ctx, query, eventID, round); err != nil {
		return fmt.Errorf("failed to mark round announcement for event %d round %d: %w", eventID, round, err)
	}
	return nil
}
