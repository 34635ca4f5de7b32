package queues

import (
	"context"

	"dragon-duel-client/game"
)

// MaxRoundsPerBattle bounds a single battle request.
const MaxRoundsPerBattle = 1000

type BattleRequest struct {
	BattleID string `json:"battleId"`
	Rounds   int    `json:"rounds"`
	PlayerID string `json:"playerId,omitempty"`
}

// Valid reports whether the request can be played at all; invalid requests are poison.
func (r *BattleRequest) Valid() bool {
	return r.BattleID != "" && r.Rounds > 0 && r.Rounds <= MaxRoundsPerBattle
}

type BattleStatus string

const (
	StatusSuccess BattleStatus = "Success"
	StatusFailure BattleStatus = "Failure"
)

// RoundOutcome is one played round as reported in a BattleResult.
type RoundOutcome struct {
	GameID     int                   `json:"gameId"`
	Knight     game.Knight           `json:"knight"`
	Allocation game.Allocation       `json:"allocation"`
	Branch     string                `json:"branch"`
	Result     game.SubmissionResult `json:"result"`
	Weather    *game.WeatherReport   `json:"weather,omitempty"`
}

type BattleResult struct {
	EnvelopeVersion string         `json:"envelopeVersion"`
	Type            string         `json:"type"`
	BattleID        string         `json:"battleId"`
	Status          BattleStatus   `json:"status"`
	Victories       int            `json:"victories"`
	Defeats         int            `json:"defeats"`
	Rounds          []RoundOutcome `json:"rounds,omitempty"`
	ErrorMessage    *string        `json:"errorMessage,omitempty"`
}

type Subscriber interface {
	Start(ctx context.Context, handler func(context.Context, *BattleRequest) error) error
}

type Publisher interface {
	PublishResult(ctx context.Context, res *BattleResult) error
}
