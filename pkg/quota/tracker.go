package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrQuotaExhausted is returned by Reserve when the daily budget is spent.
var ErrQuotaExhausted = errors.New("daily BLS query quota exhausted")

// Prometheus metrics for quota tracking.
var (
	blsQuotaRemaining = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "bls_quota_remaining",
		Help: "Queries remaining in the current BLS daily budget by tier",
	}, []string{"tier"})

	blsQuotaBlocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bls_quota_blocks_total",
		Help: "Total number of requests refused because the daily budget was spent",
	}, []string{"tier"})
)

// Tracker counts BLS queries per tier per UTC day.
type Tracker struct {
	redis  *redis.Client
	logger zerolog.Logger
	now    func() time.Time
}

// NewTracker creates a new quota tracker.
func NewTracker(redisClient *redis.Client, logger zerolog.Logger) *Tracker {
	return &Tracker{
		redis:  redisClient,
		logger: logger,
		now:    time.Now,
	}
}

// GetState returns today's usage for the account. A missing counter means
// no queries have been made today.
func (t *Tracker) GetState(ctx context.Context, account Account) (*QuotaState, error) {
	now := t.now()
	tier := account.Tier

	used, err := t.redis.Get(ctx, dayKey(account, now)).Int()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get quota counter: %w", err)
	}

	return &QuotaState{
		Tier:    tier,
		Used:    used,
		Limit:   tier.DailyLimit(),
		ResetAt: nextReset(now),
	}, nil
}

// Reserve consumes one query from the account's budget. When the budget is
// already spent the counter is left unchanged and ErrQuotaExhausted is
// returned.
func (t *Tracker) Reserve(ctx context.Context, account Account) (*QuotaState, error) {
	now := t.now()
	tier := account.Tier
	key := dayKey(account, now)
	resetAt := nextReset(now)

	pipe := t.redis.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireAt(ctx, key, resetAt)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("reserve quota in redis: %w", err)
	}

	state := &QuotaState{
		Tier:    tier,
		Used:    int(incr.Val()),
		Limit:   tier.DailyLimit(),
		ResetAt: resetAt,
	}

	if state.Used > state.Limit {
		if err := t.redis.Decr(ctx, key).Err(); err != nil {
			t.logger.Warn().Err(err).Msg("Failed to release refused quota reservation")
		}
		state.Used = state.Limit
		blsQuotaRemaining.WithLabelValues(string(tier)).Set(0)
		blsQuotaBlocksTotal.WithLabelValues(string(tier)).Inc()

		t.logger.Error().
			Str("tier", string(tier)).
			Int("limit", state.Limit).
			Dur("wait_duration", state.TimeUntilReset()).
			Msg("BLS daily quota exhausted - blocking request")

		return state, fmt.Errorf("%w: %d/%d %s queries used, resets at %s",
			ErrQuotaExhausted, state.Limit, state.Limit, tier, resetAt.Format(time.RFC3339))
	}

	blsQuotaRemaining.WithLabelValues(string(tier)).Set(float64(state.Remaining()))

	if state.NeedsWarning() {
		t.logger.Warn().
			Str("tier", string(tier)).
			Int("remaining", state.Remaining()).
			Int("limit", state.Limit).
			Msg("BLS daily quota running low")
	} else {
		t.logger.Debug().
			Str("tier", string(tier)).
			Int("remaining", state.Remaining()).
			Msg("BLS quota reserved")
	}

	return state, nil
}
