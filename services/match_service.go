package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Marling1212/ntu-sports-sub001/brackets"
	"github.com/Marling1212/ntu-sports-sub001/models"
	"github.com/Marling1212/ntu-sports-sub001/repositories"
)

// RecordResultInput settles a match. Outcome win requires WinnerID to be one
// of the match's competitors; outcome draw is only valid in the regular
// season (round 0).
type RecordResultInput struct {
	Score1   *string             `json:"score1,omitempty"`
	Score2   *string             `json:"score2,omitempty"`
	Outcome  models.MatchOutcome `json:"outcome"`
	WinnerID *int                `json:"winner_id,omitempty"`
}

// RoundNotifier delivers round-completion notices to the event organizer.
type RoundNotifier interface {
	SendRoundCompletedEmail(to, eventName, roundName string) error
}

type MatchService interface {
	GetMatch(ctx context.Context, id int) (*models.Match, error)
	ListByEvent(ctx context.Context, eventID int, round *int, status *models.MatchStatus) ([]*models.Match, error)
	RecordResult(ctx context.Context, matchID int, input RecordResultInput) (*models.Match, error)
	AdvanceWinner(ctx context.Context, matchID int) error
	UpdateStatus(ctx context.Context, matchID int, status models.MatchStatus) (*models.Match, error)
}

type matchService struct {
	matchRepo        repositories.MatchRepository
	eventRepo        repositories.EventRepository
	announcementRepo repositories.AnnouncementRepository
	userRepo         repositories.UserRepository
	notifier         RoundNotifier
	hub              *brackets.Hub
	logger           *slog.Logger
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	eventRepo repositories.EventRepository,
	announcementRepo repositories.AnnouncementRepository,
	userRepo repositories.UserRepository,
	notifier RoundNotifier,
	hub *brackets.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		matchRepo:        matchRepo,
		eventRepo:        eventRepo,
		announcementRepo: announcementRepo,
		userRepo:         userRepo,
		notifier:         notifier,
		hub:              hub,
		logger:           logger,
	}
}

func (s *matchService) GetMatch(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", id, err)
	}
	return match, nil
}

func (s *matchService) ListByEvent(ctx context.Context, eventID int, round *int, status *models.MatchStatus) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByEvent(ctx, eventID, round, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for event %d: %w", eventID, err)
	}
	return matches, nil
}

// RecordResult settles a match and, for elimination rounds, propagates the
// winner into the next round. The propagation step is idempotent so a retry
// after a partial failure converges instead of corrupting the bracket.
func (s *matchService) RecordResult(ctx context.Context, matchID int, input RecordResultInput) (*models.Match, error) {
	match, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status == models.MatchStatusBye {
		return nil, ErrMatchAlreadySettled
	}
	// A completed match only accepts a verbatim re-submission, so a retry
	// after a partial advancement failure converges. Changing the outcome or
	// winner would contradict rounds that already consumed the old winner.
	if match.Status == models.MatchStatusCompleted && !sameResult(match, input) {
		return nil, ErrMatchAlreadySettled
	}

	switch input.Outcome {
	case models.OutcomeWin:
		if input.WinnerID == nil || !match.HasCompetitor(*input.WinnerID) {
			return nil, ErrInvalidWinner
		}
	case models.OutcomeDraw:
		if match.Round >= 1 {
			return nil, ErrDrawNotAllowed
		}
		if input.WinnerID != nil {
			return nil, fmt.Errorf("%w: a draw has no winner", ErrValidationFailed)
		}
	default:
		return nil, fmt.Errorf("%w: outcome must be %q or %q", ErrValidationFailed, models.OutcomeWin, models.OutcomeDraw)
	}

	match.Score1 = input.Score1
	match.Score2 = input.Score2
	match.Status = models.MatchStatusCompleted
	match.Outcome = input.Outcome
	match.WinnerID = input.WinnerID

	if err := s.matchRepo.UpdateResult(ctx, nil, match); err != nil {
		return nil, fmt.Errorf("failed to save result for match %d: %w", matchID, err)
	}
	s.logger.Info("match result recorded",
		slog.Int("match_id", match.ID),
		slog.Int("event_id", match.EventID),
		slog.Int("round", match.Round),
		slog.String("outcome", string(match.Outcome)))

	if s.hub != nil {
		s.hub.BroadcastEvent(match.EventID, brackets.MessageMatchUpdated, match)
	}

	if match.Round >= 1 {
		if err := s.AdvanceWinner(ctx, match.ID); err != nil {
			return nil, err
		}
	}
	if err := s.checkRoundCompletion(ctx, match.EventID, match.Round); err != nil {
		// The result is already saved; a failed announcement must not
		// surface as a failed result submission.
		s.logger.Error("round completion check failed",
			slog.Int("event_id", match.EventID),
			slog.Int("round", match.Round),
			slog.Any("error", err))
	}
	return match, nil
}

// sameResult reports whether the input re-states the match's settled result.
func sameResult(match *models.Match, input RecordResultInput) bool {
	if match.Outcome != input.Outcome {
		return false
	}
	if (match.WinnerID == nil) != (input.WinnerID == nil) {
		return false
	}
	return match.WinnerID == nil || *match.WinnerID == *input.WinnerID
}

// AdvanceWinner copies the match winner into its slot in the next round and
// cascades through any bye it creates. Every step re-reads current state and
// writes only missing slots, so calling it twice is a no-op; finding a
// different competitor already in the slot is a conflict, not an overwrite.
// The cascade is bounded by the number of rounds.
func (s *matchService) AdvanceWinner(ctx context.Context, matchID int) error {
	match, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return err
	}
	if match.Round < 1 {
		return nil
	}

	matches, err := s.matchRepo.ListByEvent(ctx, match.EventID, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to list matches for event %d: %w", match.EventID, err)
	}
	grid := brackets.BuildGrid(matches)
	totalRounds := grid.Rounds()

	current := grid.Match(match.Round, match.MatchNumber)
	if current == nil {
		return ErrMatchNotFound
	}

	for round := current.Round; round <= totalRounds; round++ {
		if !current.IsTerminal() || current.WinnerID == nil {
			return nil
		}
		if current.Round == totalRounds {
			return s.finishEvent(ctx, current.EventID)
		}

		next := grid.Match(current.Round+1, brackets.NextMatchNumber(current.MatchNumber))
		if next == nil {
			return fmt.Errorf("%w: round %d match %d has no destination",
				ErrMatchNotFound, current.Round, current.MatchNumber)
		}

		winnerID := *current.WinnerID
		var slot **int
		if brackets.WinnerSlot(current.MatchNumber) == 1 {
			slot = &next.Competitor1ID
		} else {
			slot = &next.Competitor2ID
		}
		switch {
		case *slot == nil:
			w := winnerID
			*slot = &w
			if err := s.matchRepo.UpdateCompetitors(ctx, nil, next.ID, next.Competitor1ID, next.Competitor2ID); err != nil {
				return fmt.Errorf("failed to advance winner into match %d: %w", next.ID, err)
			}
			if s.hub != nil {
				s.hub.BroadcastEvent(next.EventID, brackets.MessageMatchUpdated, next)
			}
		case **slot != winnerID:
			return fmt.Errorf("%w: match %d slot holds competitor %d, expected %d",
				ErrAdvancementConflict, next.ID, **slot, winnerID)
		}

		// When the sibling feeder can never produce an opponent, the next
		// match collapses into a bye and the winner keeps moving.
		if next.Status == models.MatchStatusUpcoming {
			src1, src2 := brackets.SourceMatchNumbers(next.MatchNumber)
			sibling := src1
			if sibling == current.MatchNumber {
				sibling = src2
			}
			if grid.IsDeadEnd(current.Round, sibling) {
				w := winnerID
				next.Status = models.MatchStatusBye
				next.Outcome = models.OutcomeWin
				next.WinnerID = &w
				if err := s.matchRepo.UpdateResult(ctx, nil, next); err != nil {
					return fmt.Errorf("failed to record bye for match %d: %w", next.ID, err)
				}
				s.logger.Info("bye cascaded",
					slog.Int("event_id", next.EventID),
					slog.Int("round", next.Round),
					slog.Int("match_number", next.MatchNumber),
					slog.Int("winner_id", w))
				if s.hub != nil {
					s.hub.BroadcastEvent(next.EventID, brackets.MessageMatchUpdated, next)
				}
			}
		}

		if !next.IsTerminal() {
			return nil
		}
		current = next
	}
	return nil
}

// finishEvent marks the event completed once its final has a winner.
func (s *matchService) finishEvent(ctx context.Context, eventID int) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to load event %d: %w", eventID, err)
	}
	if event.Status == models.EventStatusCompleted {
		return nil
	}
	if err := s.eventRepo.UpdateStatus(ctx, eventID, models.EventStatusCompleted); err != nil {
		return fmt.Errorf("failed to complete event %d: %w", eventID, err)
	}
	s.logger.Info("event completed", slog.Int("event_id", eventID))
	return nil
}

// checkRoundCompletion posts a round-completion announcement the first time
// a round finishes. The side table guarantees at-most-once even when two
// results for the round land concurrently.
func (s *matchService) checkRoundCompletion(ctx context.Context, eventID, round int) error {
	matches, err := s.matchRepo.ListByEvent(ctx, eventID, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to list matches for event %d: %w", eventID, err)
	}
	grid := brackets.BuildGrid(matches)
	if round == 0 {
		if !brackets.RoundComplete(matches, 0) {
			return nil
		}
	} else if !grid.RoundSettled(round) {
		return nil
	}

	announced, err := s.announcementRepo.HasRoundAnnouncement(ctx, eventID, round)
	if err != nil {
		return err
	}
	if announced {
		return nil
	}
	if err := s.announcementRepo.MarkRoundAnnouncement(ctx, nil, eventID, round); err != nil {
		return err
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to load event %d: %w", eventID, err)
	}

	roundName := "Regular Season"
	if round >= 1 {
		roundName = brackets.RoundName(round, grid.Rounds())
	}

	announcement := &models.Announcement{
		EventID: eventID,
		Title:   fmt.Sprintf("%s complete", roundName),
		Content: fmt.Sprintf("All %s matches of %s have finished.", roundName, event.Name),
	}
	if err := s.announcementRepo.Create(ctx, nil, announcement); err != nil {
		return fmt.Errorf("failed to create round announcement: %w", err)
	}
	s.logger.Info("round completed",
		slog.Int("event_id", eventID),
		slog.Int("round", round),
		slog.String("round_name", roundName))

	if s.hub != nil {
		s.hub.BroadcastEvent(eventID, brackets.MessageRoundCompleted, announcement)
	}
	if s.notifier != nil {
		organizer, userErr := s.userRepo.GetByID(ctx, event.OrganizerID)
		if userErr != nil {
			s.logger.Error("organizer lookup failed", slog.Int("event_id", eventID), slog.Any("error", userErr))
			return nil
		}
		if mailErr := s.notifier.SendRoundCompletedEmail(organizer.Email, event.Name, roundName); mailErr != nil {
			s.logger.Error("round completion email failed", slog.Int("event_id", eventID), slog.Any("error", mailErr))
		}
	}
	return nil
}

// UpdateStatus moves a match through the scheduling state machine. Completed
// is only reachable through RecordResult and bye is assigned at generation,
// so neither is accepted here.
func (s *matchService) UpdateStatus(ctx context.Context, matchID int, status models.MatchStatus) (*models.Match, error) {
	if status == models.MatchStatusCompleted || status == models.MatchStatusBye {
		return nil, ErrInvalidStatusChange
	}
	match, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !brackets.CanTransition(match.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusChange, match.Status, status)
	}
	if err := s.matchRepo.UpdateStatus(ctx, matchID, status); err != nil {
		return nil, fmt.Errorf("failed to update status for match %d: %w", matchID, err)
	}
	match.Status = status
	if s.hub != nil {
		s.hub.BroadcastEvent(match.EventID, brackets.MessageMatchUpdated, match)
	}
	return match, nil
}
