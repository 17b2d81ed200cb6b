package brackets

import (
	"errors"
	"math/rand"
	"testing"
)

func TestCanonicalSeedSlots64(t *testing.T) {
	want := []int{0, 63, 32, 31, 16, 47, 48, 15}

	got, err := CanonicalSeedSlots(64, 8)
	if err != nil {
		t.Fatalf("CanonicalSeedSlots(64, 8) failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d slots, got %d", len(want), len(got))
	}
	for i, slot := range want {
		if got[i] != slot {
			t.Errorf("seed %d: expected slot %d, got %d", i+1, slot, got[i])
		}
	}
}

func TestCanonicalSeedSlotsSmallBrackets(t *testing.T) {
	tests := []struct {
		bracketSize int
		seedCount   int
		want        []int
	}{
		{2, 2, []int{0, 1}},
		{4, 2, []int{0, 3}},
		{4, 4, []int{0, 3, 2, 1}},
		{8, 4, []int{0, 7, 4, 3}},
		{8, 8, []int{0, 7, 4, 3, 2, 5, 6, 1}},
		{16, 5, []int{0, 15, 8, 7, 4}},
	}

	for _, tc := range tests {
		got, err := CanonicalSeedSlots(tc.bracketSize, tc.seedCount)
		if err != nil {
			t.Fatalf("CanonicalSeedSlots(%d, %d) failed: %v", tc.bracketSize, tc.seedCount, err)
		}
		for i, slot := range tc.want {
			if got[i] != slot {
				t.Errorf("B=%d seeds=%d: seed %d expected slot %d, got %d",
					tc.bracketSize, tc.seedCount, i+1, slot, got[i])
			}
		}
	}
}

// Seeds 1 and 2 must land in opposite halves for every bracket size and seed
// count, so they cannot meet before the final.
func TestTopTwoSeedsSeparated(t *testing.T) {
	for _, bracketSize := range []int{2, 4, 8, 16, 32, 64, 128} {
		for seedCount := 2; seedCount <= MaxSeeds && seedCount <= bracketSize; seedCount++ {
			slots, err := CanonicalSeedSlots(bracketSize, seedCount)
			if err != nil {
				t.Fatalf("CanonicalSeedSlots(%d, %d) failed: %v", bracketSize, seedCount, err)
			}
			half := bracketSize / 2
			if (slots[0] < half) == (slots[1] < half) {
				t.Errorf("B=%d seeds=%d: seeds 1 and 2 share a half (slots %d, %d)",
					bracketSize, seedCount, slots[0], slots[1])
			}
			seen := make(map[int]bool)
			for i, s := range slots {
				if s < 0 || s >= bracketSize {
					t.Errorf("B=%d: seed %d slot %d out of range", bracketSize, i+1, s)
				}
				if seen[s] {
					t.Errorf("B=%d seeds=%d: slot %d assigned twice", bracketSize, seedCount, s)
				}
				seen[s] = true
			}
		}
	}
}

// Seeds 3 and 4 must not share a quarter with each other or with a stronger
// seed, so the semifinal is their earliest possible meeting.
func TestSeedsThreeFourQuarterSeparation(t *testing.T) {
	for _, bracketSize := range []int{8, 16, 64} {
		slots, err := CanonicalSeedSlots(bracketSize, 4)
		if err != nil {
			t.Fatalf("CanonicalSeedSlots(%d, 4) failed: %v", bracketSize, err)
		}
		quarter := func(slot int) int { return slot / (bracketSize / 4) }
		quarters := make(map[int]int)
		for seed, slot := range slots {
			q := quarter(slot)
			if other, taken := quarters[q]; taken {
				t.Errorf("B=%d: seeds %d and %d share quarter %d", bracketSize, other+1, seed+1, q)
			}
			quarters[q] = seed
		}
	}
}

func TestAssignSlotsFourCompetitors(t *testing.T) {
	// Two seeds and two unseeded in a bracket of 4: seed 1 at slot 0,
	// seed 2 at slot 3, unseeded fill slots 1 and 2 in order.
	slots, err := AssignSlots([]int{101, 102}, []int{201, 202}, 4)
	if err != nil {
		t.Fatalf("AssignSlots failed: %v", err)
	}

	want := []int{101, 201, 202, 102}
	for i, id := range want {
		if slots[i] == nil || *slots[i] != id {
			t.Errorf("slot %d: expected competitor %d, got %v", i, id, slots[i])
		}
	}
}

func TestAssignSlotsLeavesByes(t *testing.T) {
	slots, err := AssignSlots([]int{1, 2}, []int{3}, 8)
	if err != nil {
		t.Fatalf("AssignSlots failed: %v", err)
	}

	populated := 0
	for _, s := range slots {
		if s != nil {
			populated++
		}
	}
	if populated != 3 {
		t.Errorf("expected 3 populated slots, got %d", populated)
	}
	if slots[0] == nil || *slots[0] != 1 {
		t.Errorf("seed 1 should hold slot 0, got %v", slots[0])
	}
	if slots[7] == nil || *slots[7] != 2 {
		t.Errorf("seed 2 should hold slot 7, got %v", slots[7])
	}
}

func TestAssignSlotsValidation(t *testing.T) {
	tests := []struct {
		name        string
		seeded      []int
		unseeded    []int
		bracketSize int
		wantErr     error
	}{
		{"size not power of two", []int{1}, nil, 6, ErrInvalidBracketSize},
		{"size below minimum", []int{1}, nil, 1, ErrInvalidBracketSize},
		{"more competitors than slots", []int{1, 2}, []int{3, 4, 5}, 4, ErrInvalidBracketSize},
		{"more seeds than table", []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, nil, 16, ErrTooManySeeds},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := AssignSlots(tc.seeded, tc.unseeded, tc.bracketSize)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestAssignSlotsRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	competitors := []int{1, 2, 3, 4, 5}

	slots, err := AssignSlotsRandom(competitors, 8, rng)
	if err != nil {
		t.Fatalf("AssignSlotsRandom failed: %v", err)
	}

	seen := make(map[int]bool)
	for _, s := range slots {
		if s != nil {
			seen[*s] = true
		}
	}
	if len(seen) != len(competitors) {
		t.Errorf("expected all %d competitors placed exactly once, got %d distinct", len(competitors), len(seen))
	}

	if _, err := AssignSlotsRandom(competitors, 4, rng); !errors.Is(err, ErrInvalidBracketSize) {
		t.Errorf("expected ErrInvalidBracketSize for undersized bracket, got %v", err)
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct{ n, want int }{
		{0, 2}, {1, 2}, {2, 2}, {3, 4}, {4, 4}, {5, 8}, {9, 16}, {17, 32}, {64, 64},
	}
	for _, tc := range tests {
		if got := NextPowerOfTwo(tc.n); got != tc.want {
			t.Errorf("NextPowerOfTwo(%d) = %d, want %d", tc.n, got, tc.want)
		}
	}
}
