package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Marling1212/ntu-sports-sub001/brackets"
	"github.com/Marling1212/ntu-sports-sub001/models"
	"github.com/Marling1212/ntu-sports-sub001/repositories"
)

// SeedBracketInput controls a bracket (re-)seed. BracketSize defaults to the
// smallest power of two holding every competitor. RandomDraw scatters all
// competitors (seeded or not) uniformly instead of the canonical placement.
type SeedBracketInput struct {
	BracketSize *int `json:"bracket_size,omitempty"`
	RandomDraw  bool `json:"random_draw"`
}

// SeedPlayoffsInput seeds the elimination rounds of a season-play event from
// its regular-season standings. The top QualifierCount competitors qualify;
// the best of them (up to the canonical table limit) carry seeds in standings
// order, the rest enter unseeded in standings order.
type SeedPlayoffsInput struct {
	QualifierCount int  `json:"qualifier_count"`
	BracketSize    *int `json:"bracket_size,omitempty"`
}

type RoundView struct {
	Round   int             `json:"round"`
	Name    string          `json:"name"`
	Matches []*models.Match `json:"matches"`
}

type DrawView struct {
	Event       *models.Event        `json:"event"`
	Competitors []*models.Competitor `json:"competitors"`
	Rounds      []RoundView          `json:"rounds"`
}

type BracketService interface {
	SeedBracket(ctx context.Context, eventID int, input SeedBracketInput) ([]*models.Match, error)
	SeedPlayoffs(ctx context.Context, eventID int, input SeedPlayoffsInput) ([]*models.Match, error)
	GetDraw(ctx context.Context, eventID int) (*DrawView, error)
}

type bracketService struct {
	db             *sql.DB
	eventRepo      repositories.EventRepository
	competitorRepo repositories.CompetitorRepository
	matchRepo      repositories.MatchRepository
	hub            *brackets.Hub
	logger         *slog.Logger
}

func NewBracketService(
	db *sql.DB,
	eventRepo repositories.EventRepository,
	competitorRepo repositories.CompetitorRepository,
	matchRepo repositories.MatchRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		db:             db,
		eventRepo:      eventRepo,
		competitorRepo: competitorRepo,
		matchRepo:      matchRepo,
		hub:            hub,
		logger:         logger,
	}
}

func (s *bracketService) SeedBracket(ctx context.Context, eventID int, input SeedBracketInput) ([]*models.Match, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event %d: %w", eventID, err)
	}

	competitors, err := s.competitorRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list competitors for event %d: %w", eventID, err)
	}

	seeded, unseeded, err := splitBySeed(competitors)
	if err != nil {
		return nil, err
	}
	return s.seedAndReplace(ctx, event, seeded, unseeded, input.BracketSize, input.RandomDraw)
}

func (s *bracketService) SeedPlayoffs(ctx context.Context, eventID int, input SeedPlayoffsInput) ([]*models.Match, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event %d: %w", eventID, err)
	}
	if event.Type != models.EventSeasonPlay {
		return nil, ErrEventNotSeasonPlay
	}

	regularSeason := 0
	matches, err := s.matchRepo.ListByEvent(ctx, eventID, &regularSeason, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list regular-season matches for event %d: %w", eventID, err)
	}

	standings := brackets.ComputeStandings(matches)
	if input.QualifierCount < 2 {
		return nil, fmt.Errorf("%w: need at least 2 qualifiers", ErrValidationFailed)
	}
	if len(standings) < input.QualifierCount {
		return nil, fmt.Errorf("%w: only %d competitors have results", ErrNotEnoughCompetitors, len(standings))
	}

	// Standings order becomes playoff seeding order: the best rows carry
	// seeds, anything beyond the canonical table enters unseeded.
	qualifiers := standings[:input.QualifierCount]
	seedCount := len(qualifiers)
	if seedCount > brackets.MaxSeeds {
		seedCount = brackets.MaxSeeds
	}
	seeded := make([]int, 0, seedCount)
	unseeded := make([]int, 0, len(qualifiers)-seedCount)
	for i, row := range qualifiers {
		if i < seedCount {
			seeded = append(seeded, row.CompetitorID)
		} else {
			unseeded = append(unseeded, row.CompetitorID)
		}
	}

	return s.seedAndReplace(ctx, event, seeded, unseeded, input.BracketSize, false)
}

// seedAndReplace runs the full placement and generation pipeline, then
// replaces the event's elimination rounds inside one transaction. All
// validation happens before the first write, so a failure leaves the
// previous bracket untouched.
func (s *bracketService) seedAndReplace(ctx context.Context, event *models.Event, seeded, unseeded []int, requestedSize *int, randomDraw bool) ([]*models.Match, error) {
	total := len(seeded) + len(unseeded)
	if total < 2 {
		return nil, ErrNotEnoughCompetitors
	}

	bracketSize := brackets.NextPowerOfTwo(total)
	if requestedSize != nil {
		bracketSize = *requestedSize
	}

	var slots []*int
	var err error
	if randomDraw {
		all := append(append([]int{}, seeded...), unseeded...)
		slots, err = brackets.AssignSlotsRandom(all, bracketSize, rand.New(rand.NewSource(time.Now().UnixNano())))
	} else {
		slots, err = brackets.AssignSlots(seeded, unseeded, bracketSize)
	}
	if err != nil {
		return nil, err
	}

	generated, err := brackets.Generate(slots)
	if err != nil {
		return nil, err
	}

	defaultMatchTime := event.StartDate
	if time.Now().After(defaultMatchTime) {
		defaultMatchTime = time.Now().Add(15 * time.Minute)
	}
	for _, m := range generated {
		m.EventID = event.ID
		t := defaultMatchTime
		m.MatchTime = &t
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	var txErr error
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("rollback failed", slog.Any("error", rbErr), slog.Any("cause", txErr))
			}
		}
	}()

	// A new seeding replaces the whole bracket: every round >= 1 match of
	// the previous shape is deleted before the new set goes in.
	if txErr = s.matchRepo.DeleteEliminationRounds(ctx, tx, event.ID); txErr != nil {
		return nil, fmt.Errorf("failed to clear previous bracket for event %d: %w", event.ID, txErr)
	}
	if txErr = s.matchRepo.CreateBatch(ctx, tx, generated); txErr != nil {
		return nil, fmt.Errorf("failed to insert bracket for event %d: %w", event.ID, txErr)
	}
	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("failed to commit bracket for event %d: %w", event.ID, txErr)
	}

	s.logger.Info("bracket seeded",
		slog.Int("event_id", event.ID),
		slog.Int("bracket_size", bracketSize),
		slog.Int("competitors", total),
		slog.Bool("random_draw", randomDraw))

	if s.hub != nil {
		s.hub.BroadcastEvent(event.ID, brackets.MessageBracketSeeded, generated)
	}
	return generated, nil
}

func (s *bracketService) GetDraw(ctx context.Context, eventID int) (*DrawView, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event %d: %w", eventID, err)
	}

	view := &DrawView{Event: event}
	var matches []*models.Match

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		competitors, err := s.competitorRepo.ListByEvent(gCtx, eventID)
		if err != nil {
			return fmt.Errorf("failed to list competitors: %w", err)
		}
		view.Competitors = competitors
		return nil
	})
	g.Go(func() error {
		list, err := s.matchRepo.ListByEvent(gCtx, eventID, nil, nil)
		if err != nil {
			return fmt.Errorf("failed to list matches: %w", err)
		}
		matches = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[int]*models.Competitor, len(view.Competitors))
	for _, c := range view.Competitors {
		byID[c.ID] = c
	}

	grid := brackets.BuildGrid(matches)
	totalRounds := grid.Rounds()

	byRound := make(map[int][]*models.Match)
	for _, m := range matches {
		if m.Competitor1ID != nil {
			m.Competitor1 = byID[*m.Competitor1ID]
		}
		if m.Competitor2ID != nil {
			m.Competitor2 = byID[*m.Competitor2ID]
		}
		byRound[m.Round] = append(byRound[m.Round], m)
	}

	if regular, ok := byRound[0]; ok {
		view.Rounds = append(view.Rounds, RoundView{Round: 0, Name: "Regular Season", Matches: regular})
	}
	for r := 1; r <= totalRounds; r++ {
		view.Rounds = append(view.Rounds, RoundView{
			Round:   r,
			Name:    brackets.RoundName(r, totalRounds),
			Matches: byRound[r],
		})
	}
	return view, nil
}

// splitBySeed partitions competitors into seeded ids (ascending seed rank)
// and unseeded ids, rejecting duplicate ranks. The repository already
// returns seeded competitors first in rank order.
func splitBySeed(competitors []*models.Competitor) (seeded, unseeded []int, err error) {
	seen := make(map[int]bool)
	for _, c := range competitors {
		if c.Seed == nil {
			unseeded = append(unseeded, c.ID)
			continue
		}
		if seen[*c.Seed] {
			return nil, nil, fmt.Errorf("%w: seed %d", ErrDuplicateSeed, *c.Seed)
		}
		seen[*c.Seed] = true
		seeded = append(seeded, c.ID)
	}
	return seeded, unseeded, nil
}
