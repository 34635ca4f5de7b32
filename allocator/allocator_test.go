package allocator

import (
	"errors"
	"sort"
	"testing"

	"dragon-duel-client/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func attrs(attack, armor, agility, endurance int) game.RoundAttributes {
	return game.RoundAttributes{Attack: attack, Armor: armor, Agility: agility, Endurance: endurance}
}

func TestAllocate(t *testing.T) {
	tests := []struct {
		name     string
		in       game.RoundAttributes
		schedule Schedule
		want     game.Allocation
	}{
		{"unique max", attrs(2, 9, 4, 1), StandardSchedule, game.Allocation{Scale: 4, Claw: 10, Wing: 5, Fire: 1}},
		{"unique max legacy", attrs(2, 9, 4, 1), LegacySchedule, game.Allocation{Scale: 4, Claw: 10, Wing: 4, Fire: 2}},
		{"two-way tie", attrs(5, 5, 3, 1), StandardSchedule, game.Allocation{Scale: 5, Claw: 4, Wing: 10, Fire: 1}},
		{"two-way tie ignores legacy", attrs(5, 5, 3, 1), LegacySchedule, game.Allocation{Scale: 5, Claw: 4, Wing: 10, Fire: 1}},
		{"two-way tie with tied remainder", attrs(6, 2, 6, 2), StandardSchedule, game.Allocation{Scale: 5, Claw: 1, Wing: 4, Fire: 10}},
		{"equal non-max keep input order", attrs(9, 3, 3, 1), StandardSchedule, game.Allocation{Scale: 10, Claw: 4, Wing: 5, Fire: 1}},
		{"three-way tie", attrs(7, 7, 7, 1), StandardSchedule, game.Allocation{Scale: 4, Claw: 5, Wing: 10, Fire: 1}},
		{"four-way tie", attrs(4, 4, 4, 4), StandardSchedule, game.Allocation{Scale: 1, Claw: 4, Wing: 5, Fire: 10}},
		{"all zero", attrs(0, 0, 0, 0), LegacySchedule, game.Allocation{Scale: 2, Claw: 4, Wing: 4, Fire: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Allocate(tt.in, tt.schedule)
			require.NoError(t, err)
			if got != tt.want {
				t.Errorf("Allocate() mismatch\n got=%#v\nwant=%#v", got, tt.want)
			}
		})
	}
}

func TestAllocate_InvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		in       game.RoundAttributes
		schedule Schedule
	}{
		{"negative attack", attrs(-1, 2, 3, 4), StandardSchedule},
		{"negative endurance", attrs(1, 2, 3, -4), StandardSchedule},
		{"schedule over budget", attrs(1, 2, 3, 4), Schedule{10, 10, 4, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Allocate(tt.in, tt.schedule)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Allocate() err=%#v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestAllocate_SpendsBudget(t *testing.T) {
	assert.Equal(t, 20, Budget)
	for _, schedule := range []Schedule{StandardSchedule, LegacySchedule} {
		for a := 0; a <= 5; a++ {
			for b := 0; b <= 5; b++ {
				for c := 0; c <= 5; c++ {
					for d := 0; d <= 5; d++ {
						got, err := Allocate(attrs(a, b, c, d), schedule)
						require.NoError(t, err)
						if got.Total() != Budget {
							t.Fatalf("Allocate(%d,%d,%d,%d) total=%d want=%d (%#v)", a, b, c, d, got.Total(), Budget, got)
						}
					}
				}
			}
		}
	}
}

func TestAllocate_UniqueMaxFollowsRank(t *testing.T) {
	inputs := []game.RoundAttributes{
		attrs(1, 2, 3, 4),
		attrs(8, 6, 4, 2),
		attrs(3, 12, 0, 7),
		attrs(5, 1, 9, 5),
	}
	for _, in := range inputs {
		got, err := Allocate(in, StandardSchedule)
		require.NoError(t, err)

		values, points := in.Values(), got.Values()
		idx := []int{0, 1, 2, 3}
		sort.SliceStable(idx, func(i, j int) bool { return values[idx[i]] > values[idx[j]] })
		assert.Equal(t, 10, points[idx[0]], "maximum takes the top tier for %#v", in)
		for i := 1; i < 4; i++ {
			if values[idx[i]] < values[idx[i-1]] {
				assert.Less(t, points[idx[i]], points[idx[i-1]], "points must follow value order for %#v", in)
			}
		}
	}
}

func TestRank(t *testing.T) {
	tests := []struct {
		name      string
		in        [4]int
		order     [4]int
		countMax  int
		branch    Branch
		tied1     int
		tied2     int
		checkTies bool
	}{
		{name: "distinct", in: [4]int{2, 9, 4, 1}, order: [4]int{3, 0, 2, 1}, countMax: 1, branch: BranchSingleMax},
		{name: "pair at top", in: [4]int{5, 5, 3, 1}, order: [4]int{3, 2, 0, 1}, countMax: 2, branch: BranchTiedMax, tied1: 0, tied2: 1, checkTies: true},
		{name: "split pair", in: [4]int{1, 8, 2, 8}, order: [4]int{0, 2, 1, 3}, countMax: 2, branch: BranchTiedMax, tied1: 1, tied2: 3, checkTies: true},
		{name: "triple", in: [4]int{7, 7, 7, 1}, order: [4]int{3, 0, 1, 2}, countMax: 3, branch: BranchMultiMax},
		{name: "all equal", in: [4]int{4, 4, 4, 4}, order: [4]int{0, 1, 2, 3}, countMax: 4, branch: BranchMultiMax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Rank(tt.in)
			assert.Equal(t, tt.order, r.Order)
			assert.Equal(t, tt.countMax, r.CountMax)
			assert.Equal(t, tt.branch, r.Branch())
			if tt.checkTies {
				m1, m2 := r.TiedMax()
				assert.Equal(t, tt.tied1, m1)
				assert.Equal(t, tt.tied2, m2)
			}
		})
	}
}

func TestSchedule_Total(t *testing.T) {
	assert.Equal(t, Budget, StandardSchedule.Total())
	assert.Equal(t, Budget, LegacySchedule.Total())
}
