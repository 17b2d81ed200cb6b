package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Marling1212/ntu-sports-sub001/brackets"
	"github.com/Marling1212/ntu-sports-sub001/models"
	"github.com/Marling1212/ntu-sports-sub001/repositories"
)

type StandingsService interface {
	GetStandings(ctx context.Context, eventID int) ([]models.Standing, error)
}

type standingsService struct {
	eventRepo      repositories.EventRepository
	competitorRepo repositories.CompetitorRepository
	matchRepo      repositories.MatchRepository
}

func NewStandingsService(
	eventRepo repositories.EventRepository,
	competitorRepo repositories.CompetitorRepository,
	matchRepo repositories.MatchRepository,
) StandingsService {
	return &standingsService{
		eventRepo:      eventRepo,
		competitorRepo: competitorRepo,
		matchRepo:      matchRepo,
	}
}

// GetStandings computes the regular-season table from completed round-0
// matches. The table is derived on read, never stored.
func (s *standingsService) GetStandings(ctx context.Context, eventID int) ([]models.Standing, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event %d: %w", eventID, err)
	}

	var (
		matches     []*models.Match
		competitors []*models.Competitor
	)
	regularSeason := 0

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.matchRepo.ListByEvent(gCtx, eventID, &regularSeason, nil)
		if err != nil {
			return fmt.Errorf("failed to list regular-season matches: %w", err)
		}
		matches = list
		return nil
	})
	g.Go(func() error {
		list, err := s.competitorRepo.ListByEvent(gCtx, eventID)
		if err != nil {
			return fmt.Errorf("failed to list competitors: %w", err)
		}
		competitors = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[int]*models.Competitor, len(competitors))
	for _, c := range competitors {
		byID[c.ID] = c
	}

	standings := brackets.ComputeStandings(matches)
	for i := range standings {
		standings[i].Competitor = byID[standings[i].CompetitorID]
	}
	return standings, nil
}
