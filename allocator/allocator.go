package allocator

import (
	"fmt"
	"sort"

	"dragon-duel-client/game"
)

// Ranking orders the four attribute indices by value.
type Ranking struct {
	// Order holds indices sorted ascending by value: Order[3] is the maximum.
	// Equal values keep their input order.
	Order    [4]int
	CountMax int
	values   [4]int
}

// Rank sorts the indices of values ascending with a stable sort.
func Rank(values [4]int) Ranking {
	r := Ranking{Order: [4]int{0, 1, 2, 3}, values: values}
	sort.SliceStable(r.Order[:], func(i, j int) bool {
		return values[r.Order[i]] < values[r.Order[j]]
	})
	maxValue := values[r.Order[3]]
	for _, v := range values {
		if v == maxValue {
			r.CountMax++
		}
	}
	return r
}

// TiedMax returns the first two indices holding the maximum, in input order.
// It is only meaningful when CountMax >= 2.
func (r Ranking) TiedMax() (int, int) {
	maxValue := r.values[r.Order[3]]
	first, second := -1, -1
	for i, v := range r.values {
		if v != maxValue {
			continue
		}
		if first < 0 {
			first = i
		} else if second < 0 {
			second = i
		}
	}
	return first, second
}

func (r Ranking) Branch() Branch {
	switch {
	case r.CountMax == 2:
		return BranchTiedMax
	case r.CountMax >= 3:
		return BranchMultiMax
	default:
		return BranchSingleMax
	}
}

// Allocate computes the dragon for a knight. Points follow the schedule in
// descending rank order, except on a two-way tie for the maximum where the
// next-highest attribute takes the top tier and the tied pair share the
// second and third tiers.
func Allocate(a game.RoundAttributes, s Schedule) (game.Allocation, error) {
	values := a.Values()
	for i, v := range values {
		if v < 0 {
			return game.Allocation{}, fmt.Errorf("%w: attribute %d is negative (%d)", ErrInvalidInput, i, v)
		}
	}
	if s.Total() != Budget {
		return game.Allocation{}, fmt.Errorf("%w: schedule %v spends %d, budget is %d", ErrInvalidInput, s, s.Total(), Budget)
	}

	r := Rank(values)
	var out [4]int
	if r.Branch() == BranchTiedMax {
		m1, m2 := r.TiedMax()
		out[r.Order[1]] = StandardSchedule[0]
		out[m1] = StandardSchedule[1]
		out[m2] = StandardSchedule[2]
		out[r.Order[0]] = StandardSchedule[3]
	} else {
		out[r.Order[3]] = s[0]
		out[r.Order[2]] = s[1]
		out[r.Order[1]] = s[2]
		out[r.Order[0]] = s[3]
	}
	return game.AllocationFromValues(out), nil
}
