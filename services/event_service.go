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

type CreateEventInput struct {
	Name        string           `json:"name"`
	Description *string          `json:"description,omitempty"`
	Sport       string           `json:"sport"`
	Type        models.EventType `json:"type"`
	Location    *string          `json:"location,omitempty"`
	StartDate   time.Time        `json:"start_date"`
	EndDate     time.Time        `json:"end_date"`
}

type UpdateEventInput struct {
	Name        *string           `json:"name,omitempty"`
	Description *string           `json:"description,omitempty"`
	Sport       *string           `json:"sport,omitempty"`
	Type        *models.EventType `json:"type,omitempty"`
	Location    *string           `json:"location,omitempty"`
	StartDate   *time.Time        `json:"start_date,omitempty"`
	EndDate     *time.Time        `json:"end_date,omitempty"`
}

type EventService interface {
	CreateEvent(ctx context.Context, organizerID int, input CreateEventInput) (*models.Event, error)
	GetEvent(ctx context.Context, id int) (*models.Event, error)
	ListEvents(ctx context.Context, limit, offset int) ([]*models.Event, error)
	UpdateEvent(ctx context.Context, id, actorID int, input UpdateEventInput) (*models.Event, error)
	UpdateEventStatus(ctx context.Context, id, actorID int, status models.EventStatus) error
	UploadEventLogo(ctx context.Context, id, actorID int, contentType string, file io.Reader) (*models.Event, error)
	DeleteEvent(ctx context.Context, id, actorID int) error
}

type eventService struct {
	eventRepo repositories.EventRepository
	uploader  storage.FileUploader
	logger    *slog.Logger
}

func NewEventService(eventRepo repositories.EventRepository, uploader storage.FileUploader, logger *slog.Logger) EventService {
	return &eventService{eventRepo: eventRepo, uploader: uploader, logger: logger}
}

// eventStatusTransitions is the event lifecycle. Completed and canceled are
// terminal.
var eventStatusTransitions = map[models.EventStatus][]models.EventStatus{
	models.EventStatusSoon:         {models.EventStatusRegistration, models.EventStatusCanceled},
	models.EventStatusRegistration: {models.EventStatusActive, models.EventStatusCanceled},
	models.EventStatusActive:       {models.EventStatusCompleted, models.EventStatusCanceled},
}

func validEventStatus(s models.EventStatus) bool {
	switch s {
	case models.EventStatusSoon, models.EventStatusRegistration, models.EventStatusActive,
		models.EventStatusCompleted, models.EventStatusCanceled:
		return true
	}
	return false
}

func (s *eventService) CreateEvent(ctx context.Context, organizerID int, input CreateEventInput) (*models.Event, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrEventNameRequired
	}
	if strings.TrimSpace(input.Sport) == "" {
		return nil, fmt.Errorf("%w: sport is required", ErrValidationFailed)
	}
	if input.Type != models.EventSingleElimination && input.Type != models.EventSeasonPlay {
		return nil, fmt.Errorf("%w: unknown event type %q", ErrValidationFailed, input.Type)
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, ErrEventInvalidDateRange
	}

	event := &models.Event{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Sport:       input.Sport,
		Type:        input.Type,
		OrganizerID: organizerID,
		Location:    input.Location,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Status:      models.EventStatusSoon,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		if errors.Is(err, repositories.ErrEventNameConflict) {
			return nil, ErrEventNameConflict
		}
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	s.logger.Info("event created", slog.Int("event_id", event.ID), slog.String("name", event.Name))
	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, id int) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event %d: %w", id, err)
	}
	s.attachLogoURL(event)
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, limit, offset int) ([]*models.Event, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	events, err := s.eventRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	for _, e := range events {
		s.attachLogoURL(e)
	}
	return events, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, id, actorID int, input UpdateEventInput) (*models.Event, error) {
	event, err := s.getOwnedEvent(ctx, id, actorID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrEventNameRequired
		}
		event.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		event.Description = input.Description
	}
	if input.Sport != nil {
		event.Sport = *input.Sport
	}
	if input.Type != nil {
		if *input.Type != models.EventSingleElimination && *input.Type != models.EventSeasonPlay {
			return nil, fmt.Errorf("%w: unknown event type %q", ErrValidationFailed, *input.Type)
		}
		event.Type = *input.Type
	}
	if input.Location != nil {
		event.Location = input.Location
	}
	if input.StartDate != nil {
		event.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		event.EndDate = *input.EndDate
	}
	if !event.EndDate.After(event.StartDate) {
		return nil, ErrEventInvalidDateRange
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		if errors.Is(err, repositories.ErrEventNameConflict) {
			return nil, ErrEventNameConflict
		}
		return nil, fmt.Errorf("failed to update event %d: %w", id, err)
	}
	s.attachLogoURL(event)
	return event, nil
}

func (s *eventService) UpdateEventStatus(ctx context.Context, id, actorID int, status models.EventStatus) error {
	if !validEventStatus(status) {
		return ErrEventInvalidStatus
	}
	event, err := s.getOwnedEvent(ctx, id, actorID)
	if err != nil {
		return err
	}

	allowed := false
	for _, next := range eventStatusTransitions[event.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %s -> %s", ErrEventInvalidStatusTransition, event.Status, status)
	}

	if err := s.eventRepo.UpdateStatus(ctx, id, status); err != nil {
		return fmt.Errorf("failed to update event %d status: %w", id, err)
	}
	s.logger.Info("event status changed",
		slog.Int("event_id", id),
		slog.String("from", string(event.Status)),
		slog.String("to", string(status)))
	return nil
}

func (s *eventService) UploadEventLogo(ctx context.Context, id, actorID int, contentType string, file io.Reader) (*models.Event, error) {
	event, err := s.getOwnedEvent(ctx, id, actorID)
	if err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, fmt.Errorf("%w: logo storage is not configured", ErrValidationFailed)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: logo must be an image", ErrValidationFailed)
	}

	key := fmt.Sprintf("events/%d/logo-%d", id, time.Now().UnixNano())
	storedKey, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload event logo: %w", err)
	}
	if err := s.eventRepo.UpdateLogoKey(ctx, id, &storedKey); err != nil {
		return nil, fmt.Errorf("failed to save event logo key: %w", err)
	}

	if event.LogoKey != nil && *event.LogoKey != storedKey {
		if delErr := s.uploader.Delete(ctx, *event.LogoKey); delErr != nil {
			s.logger.Warn("failed to delete previous event logo",
				slog.String("key", *event.LogoKey), slog.Any("error", delErr))
		}
	}
	event.LogoKey = &storedKey
	s.attachLogoURL(event)
	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, id, actorID int) error {
	event, err := s.getOwnedEvent(ctx, id, actorID)
	if err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete event %d: %w", id, err)
	}
	if event.LogoKey != nil && s.uploader != nil {
		if delErr := s.uploader.Delete(ctx, *event.LogoKey); delErr != nil {
			s.logger.Warn("failed to delete event logo",
				slog.String("key", *event.LogoKey), slog.Any("error", delErr))
		}
	}
	s.logger.Info("event deleted", slog.Int("event_id", id))
	return nil
}

// getOwnedEvent loads the event and verifies the actor organizes it.
func (s *eventService) getOwnedEvent(ctx context.Context, id, actorID int) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event %d: %w", id, err)
	}
	if event.OrganizerID != actorID {
		return nil, ErrForbiddenOperation
	}
	return event, nil
}

func (s *eventService) attachLogoURL(event *models.Event) {
	if event.LogoKey == nil || s.uploader == nil {
		return
	}
	url := s.uploader.GetPublicURL(*event.LogoKey)
	if url != "" {
		event.LogoURL = &url
	}
}
