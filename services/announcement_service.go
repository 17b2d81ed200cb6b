package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Marling1212/ntu-sports-sub001/brackets"
	"github.com/Marling1212/ntu-sports-sub001/models"
	"github.com/Marling1212/ntu-sports-sub001/repositories"
)

type CreateAnnouncementInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type AnnouncementService interface {
	PostAnnouncement(ctx context.Context, eventID, actorID int, input CreateAnnouncementInput) (*models.Announcement, error)
	ListByEvent(ctx context.Context, eventID int) ([]*models.Announcement, error)
}

type announcementService struct {
	announcementRepo repositories.AnnouncementRepository
	eventRepo        repositories.EventRepository
	hub              *brackets.Hub
	logger           *slog.Logger
}

func NewAnnouncementService(
	announcementRepo repositories.AnnouncementRepository,
	eventRepo repositories.EventRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
) AnnouncementService {
	return &announcementService{
		announcementRepo: announcementRepo,
		eventRepo:        eventRepo,
		hub:              hub,
		logger:           logger,
	}
}

func (s *announcementService) PostAnnouncement(ctx context.Context, eventID, actorID int, input CreateAnnouncementInput) (*models.Announcement, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event %d: %w", eventID, err)
	}
	if event.OrganizerID != actorID {
		return nil, ErrForbiddenOperation
	}
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Content) == "" {
		return nil, ErrAnnouncementBodyNeeded
	}

	announcement := &models.Announcement{
		EventID: eventID,
		Title:   strings.TrimSpace(input.Title),
		Content: strings.TrimSpace(input.Content),
	}
	if err := s.announcementRepo.Create(ctx, nil, announcement); err != nil {
		return nil, fmt.Errorf("failed to create announcement: %w", err)
	}
	s.logger.Info("announcement posted",
		slog.Int("event_id", eventID),
		slog.Int("announcement_id", announcement.ID))

	if s.hub != nil {
		s.hub.BroadcastEvent(eventID, brackets.MessageAnnouncement, announcement)
	}
	return announcement, nil
}

func (s *announcementService) ListByEvent(ctx context.Context, eventID int) ([]*models.Announcement, error) {
	announcements, err := s.announcementRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements for event %d: %w", eventID, err)
	}
	return announcements, nil
}
