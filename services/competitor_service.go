package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Marling1212/ntu-sports-sub001/models"
	"github.com/Marling1212/ntu-sports-sub001/repositories"
	"github.com/Marling1212/ntu-sports-sub001/storage"
)

type CreateCompetitorInput struct {
	Name        string  `json:"name"`
	Seed        *int    `json:"seed,omitempty"`
	Affiliation *string `json:"affiliation,omitempty"`
}

type UpdateCompetitorInput struct {
	Name        *string `json:"name,omitempty"`
	Seed        *int    `json:"seed,omitempty"`
	ClearSeed   bool    `json:"clear_seed,omitempty"`
	Affiliation *string `json:"affiliation,omitempty"`
}

type CompetitorService interface {
	AddCompetitor(ctx context.Context, eventID, actorID int, input CreateCompetitorInput) (*models.Competitor, error)
	GetCompetitor(ctx context.Context, id int) (*models.Competitor, error)
	ListByEvent(ctx context.Context, eventID int) ([]*models.Competitor, error)
	UpdateCompetitor(ctx context.Context, id, actorID int, input UpdateCompetitorInput) (*models.Competitor, error)
	UploadCompetitorLogo(ctx context.Context, id, actorID int, contentType string, file io.Reader) (*models.Competitor, error)
	RemoveCompetitor(ctx context.Context, id, actorID int) error
}

type competitorService struct {
	competitorRepo repositories.CompetitorRepository
	eventRepo      repositories.EventRepository
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewCompetitorService(
	competitorRepo repositories.CompetitorRepository,
	eventRepo repositories.EventRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) CompetitorService {
	return &competitorService{
		competitorRepo: competitorRepo,
		eventRepo:      eventRepo,
		uploader:       uploader,
		logger:         logger,
	}
}

func (s *competitorService) AddCompetitor(ctx context.Context, eventID, actorID int, input CreateCompetitorInput) (*models.Competitor, error) {
	if err := s.checkEventOwnership(ctx, eventID, actorID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrCompetitorNameRequired
	}
	if input.Seed != nil && *input.Seed < 1 {
		return nil, fmt.Errorf("%w: seed rank must be positive", ErrValidationFailed)
	}

	competitor := &models.Competitor{
		EventID:     eventID,
		Name:        strings.TrimSpace(input.Name),
		Seed:        input.Seed,
		Affiliation: input.Affiliation,
	}
	if err := s.competitorRepo.Create(ctx, competitor); err != nil {
		if errors.Is(err, repositories.ErrCompetitorSeedConflict) {
			return nil, ErrDuplicateSeed
		}
		return nil, fmt.Errorf("failed to add competitor: %w", err)
	}
	s.logger.Info("competitor added",
		slog.Int("competitor_id", competitor.ID),
		slog.Int("event_id", eventID),
		slog.String("name", competitor.Name))
	return competitor, nil
}

func (s *competitorService) GetCompetitor(ctx context.Context, id int) (*models.Competitor, error) {
	competitor, err := s.competitorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitorNotFound) {
			return nil, ErrCompetitorNotFound
		}
		return nil, fmt.Errorf("failed to load competitor %d: %w", id, err)
	}
	s.attachLogoURL(competitor)
	return competitor, nil
}

func (s *competitorService) ListByEvent(ctx context.Context, eventID int) ([]*models.Competitor, error) {
	competitors, err := s.competitorRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list competitors for event %d: %w", eventID, err)
	}
	for _, c := range competitors {
		s.attachLogoURL(c)
	}
	return competitors, nil
}

func (s *competitorService) UpdateCompetitor(ctx context.Context, id, actorID int, input UpdateCompetitorInput) (*models.Competitor, error) {
	competitor, err := s.GetCompetitor(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkEventOwnership(ctx, competitor.EventID, actorID); err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrCompetitorNameRequired
		}
		competitor.Name = strings.TrimSpace(*input.Name)
	}
	if input.ClearSeed {
		competitor.Seed = nil
	} else if input.Seed != nil {
		if *input.Seed < 1 {
			return nil, fmt.Errorf("%w: seed rank must be positive", ErrValidationFailed)
		}
		competitor.Seed = input.Seed
	}
	if input.Affiliation != nil {
		competitor.Affiliation = input.Affiliation
	}

	if err := s.competitorRepo.Update(ctx, competitor); err != nil {
		if errors.Is(err, repositories.ErrCompetitorSeedConflict) {
			return nil, ErrDuplicateSeed
		}
		return nil, fmt.Errorf("failed to update competitor %d: %w", id, err)
	}
	return competitor, nil
}

func (s *competitorService) UploadCompetitorLogo(ctx context.Context, id, actorID int, contentType string, file io.Reader) (*models.Competitor, error) {
	competitor, err := s.GetCompetitor(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkEventOwnership(ctx, competitor.EventID, actorID); err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, fmt.Errorf("%w: logo storage is not configured", ErrValidationFailed)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: logo must be an image", ErrValidationFailed)
	}

	key := fmt.Sprintf("competitors/%d/logo-%d", id, time.Now().UnixNano())
	storedKey, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload competitor logo: %w", err)
	}
	if err := s.competitorRepo.UpdateLogoKey(ctx, id, &storedKey); err != nil {
		return nil, fmt.Errorf("failed to save competitor logo key: %w", err)
	}

	if competitor.LogoKey != nil && *competitor.LogoKey != storedKey {
		if delErr := s.uploader.Delete(ctx, *competitor.LogoKey); delErr != nil {
			s.logger.Warn("failed to delete previous competitor logo",
				slog.String("key", *competitor.LogoKey), slog.Any("error", delErr))
		}
	}
	competitor.LogoKey = &storedKey
	s.attachLogoURL(competitor)
	return competitor, nil
}

func (s *competitorService) RemoveCompetitor(ctx context.Context, id, actorID int) error {
	competitor, err := s.GetCompetitor(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkEventOwnership(ctx, competitor.EventID, actorID); err != nil {
		return err
	}
	if err := s.competitorRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete competitor %d: %w", id, err)
	}
	if competitor.LogoKey != nil && s.uploader != nil {
		if delErr := s.uploader.Delete(ctx, *competitor.LogoKey); delErr != nil {
			s.logger.Warn("failed to delete competitor logo",
				slog.String("key", *competitor.LogoKey), slog.Any("error", delErr))
		}
	}
	s.logger.Info("competitor removed", slog.Int("competitor_id", id))
	return nil
}

func (s *competitorService) checkEventOwnership(ctx context.Context, eventID, actorID int) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to load event %d: %w", eventID, err)
	}
	if event.OrganizerID != actorID {
		return ErrForbiddenOperation
	}
	return nil
}

func (s *competitorService) attachLogoURL(competitor *models.Competitor) {
	if competitor.LogoKey == nil || s.uploader == nil {
		return
	}
	url := s.uploader.GetPublicURL(*competitor.LogoKey)
	if url != "" {
		competitor.LogoURL = &url
	}
}
