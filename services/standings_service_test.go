package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Marling1212/ntu-sports-sub001/models"
)

func TestGetStandingsEnrichesCompetitors(t *testing.T) {
	events := newFakeEventRepo(activeEvent(models.EventSeasonPlay))
	competitors := newFakeCompetitorRepo(
		&models.Competitor{ID: 10, EventID: 1, Name: "Alpha"},
		&models.Competitor{ID: 20, EventID: 1, Name: "Beta"},
	)
	matches := newFakeMatchRepo()
	svc := NewStandingsService(events, competitors, matches)

	ctx := context.Background()
	m := &models.Match{
		EventID: 1, Round: 0, MatchNumber: 1,
		Competitor1ID: intPtr(10), Competitor2ID: intPtr(20),
		Score1: strPtr("2"), Score2: strPtr("1"),
		Status: models.MatchStatusCompleted, Outcome: models.OutcomeWin, WinnerID: intPtr(10),
	}
	if err := matches.Create(ctx, nil, m); err != nil {
		t.Fatalf("Create: %v", err)
	}

	standings, err := svc.GetStandings(ctx, 1)
	if err != nil {
		t.Fatalf("GetStandings: %v", err)
	}
	if len(standings) != 2 {
		t.Fatalf("rows = %d, want 2", len(standings))
	}
	if standings[0].CompetitorID != 10 || standings[0].Points != 3 {
		t.Errorf("leader = %+v, want competitor 10 with 3 points", standings[0])
	}
	if standings[0].Competitor == nil || standings[0].Competitor.Name != "Alpha" {
		t.Errorf("leader competitor link missing: %+v", standings[0].Competitor)
	}
}

func TestGetStandingsUnknownEvent(t *testing.T) {
	svc := NewStandingsService(newFakeEventRepo(), newFakeCompetitorRepo(), newFakeMatchRepo())
	if _, err := svc.GetStandings(context.Background(), 9); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("got %v, want ErrEventNotFound", err)
	}
}

func TestGetStandingsIgnoresEliminationMatches(t *testing.T) {
	events := newFakeEventRepo(activeEvent(models.EventSeasonPlay))
	matches := newFakeMatchRepo()
	svc := NewStandingsService(events, newFakeCompetitorRepo(), matches)

	ctx := context.Background()
	m := &models.Match{
		EventID: 1, Round: 1, MatchNumber: 1,
		Competitor1ID: intPtr(10), Competitor2ID: intPtr(20),
		Status: models.MatchStatusCompleted, Outcome: models.OutcomeWin, WinnerID: intPtr(10),
	}
	if err := matches.Create(ctx, nil, m); err != nil {
		t.Fatalf("Create: %v", err)
	}

	standings, err := svc.GetStandings(ctx, 1)
	if err != nil {
		t.Fatalf("GetStandings: %v", err)
	}
	if len(standings) != 0 {
		t.Errorf("rows = %d, want 0", len(standings))
	}
}
