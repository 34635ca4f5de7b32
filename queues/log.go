package queues

import (
	"context"

	"github.com/rs/zerolog/log"
)

// LogPublisher reports results through the process logger. Used when no result topic is configured.
type LogPublisher struct{}

func (LogPublisher) PublishResult(ctx context.Context, res *BattleResult) error {
	ev := log.Info()
	if res.Status != StatusSuccess {
		ev = log.Warn()
	}
	if res.ErrorMessage != nil {
		ev = ev.Str("error", *res.ErrorMessage)
	}
	ev.Str("battleId", res.BattleID).Str("status", string(res.Status)).Int("victories", res.Victories).Int("defeats", res.Defeats).Int("rounds", len(res.Rounds)).Msg("battle result")
	return nil
}
