package arena

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dragon-duel-client/allocator"
	"dragon-duel-client/client"
	"dragon-duel-client/game"
	"dragon-duel-client/metrics"
	"dragon-duel-client/queues"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Games is the game service as seen by the controller.
type Games interface {
	FetchRound(ctx context.Context) *client.Future[game.Round]
	SubmitAllocation(ctx context.Context, roundID int, a game.Allocation) *client.Future[game.SubmissionResult]
	FetchWeather(ctx context.Context, stationID int) *client.Future[game.WeatherReport]
}

// Controller plays rounds against the game service and reports battles to a publisher.
type Controller struct {
	games       Games
	publisher   queues.Publisher
	schedule    allocator.Schedule
	concurrency int
	weather     bool
}

func NewController(g Games, p queues.Publisher, schedule allocator.Schedule, concurrency int, weather bool) *Controller {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Controller{games: g, publisher: p, schedule: schedule, concurrency: concurrency, weather: weather}
}

// Tally summarizes played rounds.
type Tally struct {
	Victories int
	Defeats   int
	Rounds    []queues.RoundOutcome
}

func (t *Tally) add(o queues.RoundOutcome) {
	if o.Result.Victory() {
		t.Victories++
	} else {
		t.Defeats++
	}
	t.Rounds = append(t.Rounds, o)
}

type plan struct {
	round      game.Round
	allocation game.Allocation
	branch     allocator.Branch
}

// PlayRound fetches a knight, allocates a dragon and submits it. The weather
// report, when enabled, is fetched alongside and never fails the round.
func (c *Controller) PlayRound(ctx context.Context) (*queues.RoundOutcome, error) {
	start := time.Now()

	fetched := c.games.FetchRound(ctx)
	var weather *client.Future[game.WeatherReport]
	if c.weather {
		weather = client.Chain(fetched, func(r game.Round) *client.Future[game.WeatherReport] {
			return c.games.FetchWeather(ctx, r.GameID)
		})
	}

	planned := client.Then(fetched, func(r game.Round) (plan, error) {
		attrs := r.Knight.Attributes()
		a, err := allocator.Allocate(attrs, c.schedule)
		if err != nil {
			return plan{}, fmt.Errorf("round %d: %w", r.GameID, err)
		}
		branch := allocator.Rank(attrs.Values()).Branch()
		metrics.AllocationsTotal.WithLabelValues(string(branch)).Inc()
		return plan{round: r, allocation: a, branch: branch}, nil
	})

	submitted := client.Chain(planned, func(p plan) *client.Future[queues.RoundOutcome] {
		log.Debug().Int("gameId", p.round.GameID).Interface("knight", p.round.Knight).Interface("allocation", p.allocation).Str("branch", string(p.branch)).Msg("controller: submitting allocation")
		return client.Then(c.games.SubmitAllocation(ctx, p.round.GameID, p.allocation), func(res game.SubmissionResult) (queues.RoundOutcome, error) {
			return queues.RoundOutcome{
				GameID:     p.round.GameID,
				Knight:     p.round.Knight,
				Allocation: p.allocation,
				Branch:     string(p.branch),
				Result:     res,
			}, nil
		})
	})

	out, err := submitted.Get(ctx)
	if err != nil {
		metrics.RoundsTotal.WithLabelValues("error").Inc()
		log.Error().Err(err).Str("kind", errorKind(err)).Msg("controller: round failed")
		return nil, err
	}

	if weather != nil {
		w, err := weather.Get(ctx)
		if err != nil {
			log.Warn().Err(err).Int("gameId", out.GameID).Msg("controller: weather report unavailable")
		} else {
			out.Weather = &w
		}
	}

	result := "defeat"
	if out.Result.Victory() {
		result = "victory"
	}
	metrics.RoundDuration.Observe(time.Since(start).Seconds())
	metrics.RoundsTotal.WithLabelValues(result).Inc()
	log.Info().Int("gameId", out.GameID).Str("result", out.Result.Status).Str("message", out.Result.Message).Dur("duration", time.Since(start)).Msg("controller: round played")
	return &out, nil
}

// Play plays rounds with at most the configured number in flight. It stops
// starting rounds after the first failure and returns the rounds that completed.
func (c *Controller) Play(ctx context.Context, rounds int) (*Tally, error) {
	if rounds < 0 {
		rounds = 0
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	outcomes := make([]*queues.RoundOutcome, rounds)
	for i := 0; i < rounds; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := c.PlayRound(gctx)
			if err != nil {
				return fmt.Errorf("round %d/%d: %w", i+1, rounds, err)
			}
			outcomes[i] = out
			return nil
		})
	}
	err := g.Wait()

	tally := &Tally{}
	for _, o := range outcomes {
		if o != nil {
			tally.add(*o)
		}
	}
	return tally, err
}

// publishFailure builds and publishes a failure BattleResult.
func (c *Controller) publishFailure(ctx context.Context, req *queues.BattleRequest, tally *Tally, start time.Time, message string) error {
	res := &queues.BattleResult{
		EnvelopeVersion: "1.0",
		Type:            "battle-result",
		BattleID:        req.BattleID,
		Status:          queues.StatusFailure,
		ErrorMessage:    &message,
	}
	if tally != nil {
		res.Victories, res.Defeats, res.Rounds = tally.Victories, tally.Defeats, tally.Rounds
	}
	if err := c.publisher.PublishResult(ctx, res); err != nil {
		log.Error().Err(err).Str("battleId", req.BattleID).Msg("controller: failed to publish failure result")
		return err
	}
	log.Warn().Str("battleId", req.BattleID).Dur("duration", time.Since(start)).Str("error", message).Msg("controller: battle failed")
	return nil
}

// Handle plays the requested battle and publishes its result.
func (c *Controller) Handle(ctx context.Context, req *queues.BattleRequest) error {
	start := time.Now()
	log.Info().Str("battleId", req.BattleID).Int("rounds", req.Rounds).Msg("controller: handling battle request")

	tally, err := c.Play(ctx, req.Rounds)
	if err != nil {
		return c.publishFailure(ctx, req, tally, start, err.Error())
	}

	res := &queues.BattleResult{
		EnvelopeVersion: "1.0",
		Type:            "battle-result",
		BattleID:        req.BattleID,
		Status:          queues.StatusSuccess,
		Victories:       tally.Victories,
		Defeats:         tally.Defeats,
		Rounds:          tally.Rounds,
	}
	if err := c.publisher.PublishResult(ctx, res); err != nil {
		log.Error().Err(err).Str("battleId", req.BattleID).Dur("duration", time.Since(start)).Msg("controller: failed to publish result")
		return err
	}
	log.Info().Str("battleId", req.BattleID).Int("victories", tally.Victories).Int("defeats", tally.Defeats).Dur("duration", time.Since(start)).Msg("controller: battle complete")
	return nil
}

func errorKind(err error) string {
	if errors.Is(err, allocator.ErrInvalidInput) {
		return "invalid_input"
	}
	return client.Kind(err)
}
