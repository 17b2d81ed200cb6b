package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Marling1212/ntu-sports-sub001/brackets"
	"github.com/Marling1212/ntu-sports-sub001/models"
	"github.com/Marling1212/ntu-sports-sub001/repositories"
)

// Minimal database/sql driver so the transactional seeding path runs in
// tests. The fake repositories never touch the executor they are handed, so
// the driver only has to open connections and commit transactions.
type stubDriver struct{}

func (stubDriver) Open(name string) (driver.Conn, error) { return stubConn{}, nil }

type stubConn struct{}

func (stubConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("statements are not supported")
}
func (stubConn) Close() error              { return nil }
func (stubConn) Begin() (driver.Tx, error) { return stubTx{}, nil }

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

var registerStubDriver sync.Once

func stubDB(t *testing.T) *sql.DB {
	t.Helper()
	registerStubDriver.Do(func() { sql.Register("bracketstub", stubDriver{}) })
	db, err := sql.Open("bracketstub", "")
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

type fakeCompetitorRepo struct {
	mu          sync.Mutex
	competitors map[int]*models.Competitor
}

func newFakeCompetitorRepo(competitors ...*models.Competitor) *fakeCompetitorRepo {
	r := &fakeCompetitorRepo{competitors: make(map[int]*models.Competitor)}
	for _, c := range competitors {
		cp := *c
		r.competitors[c.ID] = &cp
	}
	return r
}

func (r *fakeCompetitorRepo) Create(ctx context.Context, c *models.Competitor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.competitors {
		if existing.EventID == c.EventID && existing.Seed != nil && c.Seed != nil && *existing.Seed == *c.Seed {
			return repositories.ErrCompetitorSeedConflict
		}
	}
	c.ID = len(r.competitors) + 1
	c.CreatedAt = time.Now()
	cp := *c
	r.competitors[c.ID] = &cp
	return nil
}

func (r *fakeCompetitorRepo) GetByID(ctx context.Context, id int) (*models.Competitor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.competitors[id]
	if !ok {
		return nil, repositories.ErrCompetitorNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCompetitorRepo) ListByEvent(ctx context.Context, eventID int) ([]*models.Competitor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var seeded, unseeded []*models.Competitor
	for _, c := range r.competitors {
		if c.EventID != eventID {
			continue
		}
		cp := *c
		if c.Seed != nil {
			seeded = append(seeded, &cp)
		} else {
			unseeded = append(unseeded, &cp)
		}
	}
	// Seed rank ascending, unseeded entrants after, like the SQL ordering.
	sort.Slice(seeded, func(i, j int) bool { return *seeded[i].Seed < *seeded[j].Seed })
	sort.Slice(unseeded, func(i, j int) bool { return unseeded[i].ID < unseeded[j].ID })
	return append(seeded, unseeded...), nil
}

func (r *fakeCompetitorRepo) Update(ctx context.Context, c *models.Competitor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.competitors[c.ID]; !ok {
		return repositories.ErrCompetitorNotFound
	}
	cp := *c
	r.competitors[c.ID] = &cp
	return nil
}

func (r *fakeCompetitorRepo) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.competitors[id]
	if !ok {
		return repositories.ErrCompetitorNotFound
	}
	c.LogoKey = logoKey
	return nil
}

func (r *fakeCompetitorRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.competitors[id]; !ok {
		return repositories.ErrCompetitorNotFound
	}
	delete(r.competitors, id)
	return nil
}

func newBracketService(t *testing.T, events *fakeEventRepo, competitors *fakeCompetitorRepo, matches *fakeMatchRepo) BracketService {
	return NewBracketService(stubDB(t), events, competitors, matches, nil, testLogger())
}

func activeEvent(eventType models.EventType) *models.Event {
	return &models.Event{
		ID:          1,
		Name:        "Campus Cup",
		Sport:       "badminton",
		Type:        eventType,
		OrganizerID: 1,
		Status:      models.EventStatusActive,
	}
}

func TestSeedBracketRejectsDuplicateSeeds(t *testing.T) {
	events := newFakeEventRepo(activeEvent(models.EventSingleElimination))
	competitors := newFakeCompetitorRepo(
		&models.Competitor{ID: 1, EventID: 1, Name: "Alpha", Seed: intPtr(1)},
		&models.Competitor{ID: 2, EventID: 1, Name: "Beta", Seed: intPtr(1)},
		&models.Competitor{ID: 3, EventID: 1, Name: "Gamma"},
	)
	svc := newBracketService(t, events, competitors, newFakeMatchRepo())

	_, err := svc.SeedBracket(context.Background(), 1, SeedBracketInput{})
	if !errors.Is(err, ErrDuplicateSeed) {
		t.Errorf("got %v, want ErrDuplicateSeed", err)
	}
}

func TestSeedBracketRequiresTwoCompetitors(t *testing.T) {
	events := newFakeEventRepo(activeEvent(models.EventSingleElimination))
	competitors := newFakeCompetitorRepo(
		&models.Competitor{ID: 1, EventID: 1, Name: "Solo"},
	)
	svc := newBracketService(t, events, competitors, newFakeMatchRepo())

	_, err := svc.SeedBracket(context.Background(), 1, SeedBracketInput{})
	if !errors.Is(err, ErrNotEnoughCompetitors) {
		t.Errorf("got %v, want ErrNotEnoughCompetitors", err)
	}
}

func TestSeedBracketRejectsUndersizedBracket(t *testing.T) {
	events := newFakeEventRepo(activeEvent(models.EventSingleElimination))
	competitors := newFakeCompetitorRepo(
		&models.Competitor{ID: 1, EventID: 1, Name: "A"},
		&models.Competitor{ID: 2, EventID: 1, Name: "B"},
		&models.Competitor{ID: 3, EventID: 1, Name: "C"},
	)
	svc := newBracketService(t, events, competitors, newFakeMatchRepo())

	_, err := svc.SeedBracket(context.Background(), 1, SeedBracketInput{BracketSize: intPtr(2)})
	if err == nil {
		t.Fatal("expected an error for 3 competitors in a 2-slot bracket")
	}
}

func TestSeedBracketUnknownEvent(t *testing.T) {
	svc := newBracketService(t, newFakeEventRepo(), newFakeCompetitorRepo(), newFakeMatchRepo())
	_, err := svc.SeedBracket(context.Background(), 42, SeedBracketInput{})
	if !errors.Is(err, ErrEventNotFound) {
		t.Errorf("got %v, want ErrEventNotFound", err)
	}
}

func TestSeedPlayoffsRequiresSeasonPlay(t *testing.T) {
	events := newFakeEventRepo(activeEvent(models.EventSingleElimination))
	svc := newBracketService(t, events, newFakeCompetitorRepo(), newFakeMatchRepo())

	_, err := svc.SeedPlayoffs(context.Background(), 1, SeedPlayoffsInput{QualifierCount: 4})
	if !errors.Is(err, ErrEventNotSeasonPlay) {
		t.Errorf("got %v, want ErrEventNotSeasonPlay", err)
	}
}

func TestSeedPlayoffsNeedsEnoughResults(t *testing.T) {
	events := newFakeEventRepo(activeEvent(models.EventSeasonPlay))
	matches := newFakeMatchRepo()
	svc := newBracketService(t, events, newFakeCompetitorRepo(), matches)

	ctx := context.Background()
	m := &models.Match{
		EventID: 1, Round: 0, MatchNumber: 1,
		Competitor1ID: intPtr(10), Competitor2ID: intPtr(20),
		Score1: strPtr("1"), Score2: strPtr("0"),
		Status: models.MatchStatusCompleted, Outcome: models.OutcomeWin, WinnerID: intPtr(10),
	}
	if err := matches.Create(ctx, nil, m); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.SeedPlayoffs(ctx, 1, SeedPlayoffsInput{QualifierCount: 4}); !errors.Is(err, ErrNotEnoughCompetitors) {
		t.Errorf("got %v, want ErrNotEnoughCompetitors", err)
	}
	if _, err := svc.SeedPlayoffs(ctx, 1, SeedPlayoffsInput{QualifierCount: 1}); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("got %v, want ErrValidationFailed", err)
	}
}

func TestGetDrawGroupsRounds(t *testing.T) {
	events := newFakeEventRepo(activeEvent(models.EventSingleElimination))
	competitors := newFakeCompetitorRepo(
		&models.Competitor{ID: 10, EventID: 1, Name: "Alpha", Seed: intPtr(1)},
		&models.Competitor{ID: 20, EventID: 1, Name: "Beta", Seed: intPtr(2)},
		&models.Competitor{ID: 30, EventID: 1, Name: "Gamma"},
		&models.Competitor{ID: 40, EventID: 1, Name: "Delta"},
	)
	matches := newFakeMatchRepo()
	svc := newBracketService(t, events, competitors, matches)

	ctx := context.Background()
	slots := []*int{intPtr(10), intPtr(30), intPtr(40), intPtr(20)}
	generated, err := brackets.Generate(slots)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, m := range generated {
		m.EventID = 1
	}
	if err := matches.CreateBatch(ctx, nil, generated); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	draw, err := svc.GetDraw(ctx, 1)
	if err != nil {
		t.Fatalf("GetDraw: %v", err)
	}
	if len(draw.Rounds) != 2 {
		t.Fatalf("rounds = %d, want 2", len(draw.Rounds))
	}
	if draw.Rounds[0].Name != "Semifinals" || draw.Rounds[1].Name != "Final" {
		t.Errorf("round names = %q, %q", draw.Rounds[0].Name, draw.Rounds[1].Name)
	}
	if len(draw.Rounds[0].Matches) != 2 || len(draw.Rounds[1].Matches) != 1 {
		t.Errorf("match counts = %d, %d, want 2, 1",
			len(draw.Rounds[0].Matches), len(draw.Rounds[1].Matches))
	}

	first := draw.Rounds[0].Matches[0]
	if first.Competitor1 == nil || first.Competitor1.Name != "Alpha" {
		t.Errorf("expected competitor link on the first semifinal, got %+v", first.Competitor1)
	}
}

func TestSeedBracketReplacesPreviousBracket(t *testing.T) {
	events := newFakeEventRepo(activeEvent(models.EventSingleElimination))
	competitors := newFakeCompetitorRepo(
		&models.Competitor{ID: 10, EventID: 1, Name: "Alpha", Seed: intPtr(1)},
		&models.Competitor{ID: 20, EventID: 1, Name: "Beta", Seed: intPtr(2)},
		&models.Competitor{ID: 30, EventID: 1, Name: "Gamma"},
		&models.Competitor{ID: 40, EventID: 1, Name: "Delta"},
	)
	matches := newFakeMatchRepo()
	svc := newBracketService(t, events, competitors, matches)
	ctx := context.Background()

	first, err := svc.SeedBracket(ctx, 1, SeedBracketInput{})
	if err != nil {
		t.Fatalf("first SeedBracket: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("matches = %d, want 3", len(first))
	}
	oldIDs := make(map[int]bool)
	for _, m := range first {
		oldIDs[m.ID] = true
	}

	second, err := svc.SeedBracket(ctx, 1, SeedBracketInput{})
	if err != nil {
		t.Fatalf("second SeedBracket: %v", err)
	}

	stored, err := matches.ListByEvent(ctx, 1, nil, nil)
	if err != nil {
		t.Fatalf("ListByEvent: %v", err)
	}
	if len(stored) != len(second) {
		t.Fatalf("stored matches = %d, want %d", len(stored), len(second))
	}
	for _, m := range stored {
		if oldIDs[m.ID] {
			t.Errorf("match id %d from the previous bracket survived the re-seed", m.ID)
		}
	}

	// Each seeding clears the old rounds before inserting the new set.
	wantOps := "DeleteEliminationRounds,CreateBatch,DeleteEliminationRounds,CreateBatch"
	if got := strings.Join(matches.ops, ","); got != wantOps {
		t.Errorf("repository calls = %s, want %s", got, wantOps)
	}
}
