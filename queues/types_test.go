package queues

import (
	"encoding/json"
	"reflect"
	"testing"

	"dragon-duel-client/game"
)

func TestBattleRequest_JSON(t *testing.T) {
	tests := []struct {
		name string
		in   BattleRequest
	}{
		{"basic", BattleRequest{BattleID: "b1", Rounds: 3, PlayerID: "p1"}},
		{"empty optional", BattleRequest{BattleID: "b2", Rounds: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.in)
			if err != nil {
				t.Fatalf("marshal err: %#v", err)
			}
			var out BattleRequest
			if err := json.Unmarshal(b, &out); err != nil {
				t.Fatalf("unmarshal err: %#v", err)
			}
			if out != tt.in {
				t.Errorf("round-trip mismatch\nin:  %#v\nout: %#v", tt.in, out)
			}
		})
	}
}

func TestBattleRequest_Valid(t *testing.T) {
	tests := []struct {
		name string
		in   BattleRequest
		want bool
	}{
		{"ok", BattleRequest{BattleID: "b1", Rounds: 5}, true},
		{"missing id", BattleRequest{Rounds: 5}, false},
		{"zero rounds", BattleRequest{BattleID: "b1"}, false},
		{"negative rounds", BattleRequest{BattleID: "b1", Rounds: -2}, false},
		{"too many rounds", BattleRequest{BattleID: "b1", Rounds: MaxRoundsPerBattle + 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Valid(); got != tt.want {
				t.Errorf("Valid() got=%#v want=%#v", got, tt.want)
			}
		})
	}
}

func TestBattleResult_JSON(t *testing.T) {
	tests := []struct {
		name string
		in   BattleResult
	}{
		{"success", BattleResult{EnvelopeVersion: "1.0", Type: "battle-result", BattleID: "b1", Status: StatusSuccess, Victories: 1, Rounds: []RoundOutcome{{
			GameID:     7,
			Knight:     game.Knight{Name: "Sir A", Attack: 2, Armor: 9, Agility: 4, Endurance: 1},
			Allocation: game.Allocation{Scale: 4, Claw: 10, Wing: 5, Fire: 1},
			Branch:     "single_max",
			Result:     game.SubmissionResult{Status: "Victory", Message: "ok"},
			Weather:    &game.WeatherReport{Code: game.WeatherNormal, Rating: 1},
		}}}},
		{"failure", BattleResult{EnvelopeVersion: "1.0", Type: "battle-result", BattleID: "b2", Status: StatusFailure, ErrorMessage: strPtr("err")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.in)
			if err != nil {
				t.Fatalf("marshal err: %#v", err)
			}
			var out BattleResult
			if err := json.Unmarshal(b, &out); err != nil {
				t.Fatalf("unmarshal err: %#v", err)
			}
			if !reflect.DeepEqual(tt.in, out) {
				t.Errorf("roundtrip mismatch\n in=%#v\nout=%#v", tt.in, out)
			}
		})
	}
}

func strPtr(s string) *string { return &s }
