package allocator

import "errors"

// ErrInvalidInput is returned for attribute values the allocator cannot rank.
var ErrInvalidInput = errors.New("invalid input")

// Schedule is the four-tier point distribution, highest tier first.
type Schedule [4]int

var (
	// StandardSchedule concentrates on the strongest attribute and tapers off.
	StandardSchedule = Schedule{10, 5, 4, 1}
	// LegacySchedule is the distribution older clients submitted for every non-tie round.
	LegacySchedule = Schedule{10, 4, 4, 2}
)

// Budget is the total every allocation must spend.
var Budget = StandardSchedule.Total()

func (s Schedule) Total() int {
	return s[0] + s[1] + s[2] + s[3]
}

// Branch names the rule used for a ranking.
type Branch string

const (
	BranchSingleMax Branch = "single_max"
	BranchTiedMax   Branch = "tied_max"
	// BranchMultiMax covers three- and four-way ties; scored like BranchSingleMax.
	BranchMultiMax Branch = "multi_max"
)
