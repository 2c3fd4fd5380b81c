package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestCurrentLevel(t *testing.T) {
	levels := []Level{
		{ID: 1, Title: "one", Order: 1},
		{ID: 2, Title: "two", Order: 2},
		{ID: 3, Title: "three", Order: 3},
	}

	tests := []struct {
		name      string
		rows      []PlayerLevel
		wantID    int64
		wantFound bool
	}{
		{
			name:      "no rows",
			rows:      nil,
			wantFound: false,
		},
		{
			name:      "single row",
			rows:      []PlayerLevel{{LevelID: 1}},
			wantID:    1,
			wantFound: true,
		},
		{
			name:      "highest order wins",
			rows:      []PlayerLevel{{LevelID: 1}, {LevelID: 3}, {LevelID: 2}},
			wantID:    3,
			wantFound: true,
		},
		{
			name:      "unknown level ignored",
			rows:      []PlayerLevel{{LevelID: 99}, {LevelID: 2}},
			wantID:    2,
			wantFound: true,
		},
		{
			name:      "only unknown levels",
			rows:      []PlayerLevel{{LevelID: 99}},
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := CurrentLevel(tt.rows, levels)
			if found != tt.wantFound {
				t.Fatalf("found = %v, want %v", found, tt.wantFound)
			}
			if found && got.ID != tt.wantID {
				t.Fatalf("level id = %d, want %d", got.ID, tt.wantID)
			}
		})
	}
}

func TestNextLevel(t *testing.T) {
	levels := []Level{
		{ID: 3, Order: 9},
		{ID: 1, Order: 1},
		{ID: 2, Order: 5},
	}

	tests := []struct {
		name      string
		order     int
		wantID    int64
		wantFound bool
	}{
		{name: "from bottom", order: 0, wantID: 1, wantFound: true},
		{name: "skips gap", order: 1, wantID: 2, wantFound: true},
		{name: "between orders", order: 6, wantID: 3, wantFound: true},
		{name: "at top", order: 9, wantFound: false},
		{name: "beyond top", order: 100, wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := NextLevel(levels, tt.order)
			if found != tt.wantFound {
				t.Fatalf("found = %v, want %v", found, tt.wantFound)
			}
			if found && got.ID != tt.wantID {
				t.Fatalf("level id = %d, want %d", got.ID, tt.wantID)
			}
		})
	}
}

func TestNextLevelDoesNotMutateInput(t *testing.T) {
	levels := []Level{{ID: 2, Order: 5}, {ID: 1, Order: 1}}
	NextLevel(levels, 0)
	if levels[0].ID != 2 {
		t.Fatalf("input reordered: %+v", levels)
	}
}

func TestAdvancedResult(t *testing.T) {
	p := &Player{ID: uuid.New(), Name: "alpha"}
	next := Level{ID: 2, Title: "two", Order: 2}

	plain := AdvancedResult(p, next, nil)
	if !plain.Success || plain.Outcome != OutcomeAdvanced {
		t.Fatalf("result = %+v", plain)
	}
	if !strings.Contains(plain.Description, "advanced to level 2") {
		t.Fatalf("description = %q", plain.Description)
	}

	rewarded := AdvancedResult(p, next, []string{"Medal"})
	if !strings.Contains(rewarded.Description, "Medal") {
		t.Fatalf("description = %q, want reward mention", rewarded.Description)
	}
	if len(rewarded.Rewards) != 1 {
		t.Fatalf("rewards = %v", rewarded.Rewards)
	}
}

func TestCappedResult(t *testing.T) {
	p := &Player{ID: uuid.New(), Name: "beta"}

	plain := CappedResult(p, nil)
	if plain.Success {
		t.Fatalf("capped result succeeded: %+v", plain)
	}
	if plain.Outcome != OutcomeCapped {
		t.Fatalf("outcome = %q, want %q", plain.Outcome, OutcomeCapped)
	}

	rewarded := CappedResult(p, []string{"Crown"})
	if rewarded.Outcome != OutcomeCappedWithReward {
		t.Fatalf("outcome = %q, want %q", rewarded.Outcome, OutcomeCappedWithReward)
	}
	if !strings.Contains(rewarded.Description, "Crown") {
		t.Fatalf("description = %q", rewarded.Description)
	}
}

func TestNoProgressionResult(t *testing.T) {
	p := &Player{ID: uuid.New(), Name: "gamma"}
	r := NoProgressionResult(p)
	if r.Success || r.Outcome != OutcomeNoProgression {
		t.Fatalf("result = %+v", r)
	}
}
