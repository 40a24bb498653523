// Package quota tracks the BLS API's daily query budget in Redis so that
// every process sharing a Redis instance sees the same count.
//
// BLS allows 500 queries per day per registration key and 25 for
// unregistered callers. Each registration key has its own counter; all
// unregistered requests of a deployment share one. Each physical request consumes one query; a request
// that would exceed the budget is refused before it reaches the network.
package quota

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// RedisKeyPrefix namespaces the per-day counters.
const RedisKeyPrefix = "bls:quota"

// Tier is the budget class of a request.
type Tier string

const (
	// TierRegistered is used when a registration key is sent.
	TierRegistered Tier = "registered"

	// TierPublic is used for unregistered requests.
	TierPublic Tier = "public"
)

// Daily query limits published by BLS.
const (
	RegisteredDailyLimit = 500
	PublicDailyLimit     = 25
)

// WarningFraction is the share of the budget left at which Reserve starts
// logging warnings.
const WarningFraction = 0.1

// Account is one daily budget: a single registration key or the shared
// public pool.
type Account struct {
	Tier Tier

	// id is a digest of the registration key, empty for TierPublic.
	id string
}

// AccountFor returns the budget a request with the given key draws from.
// An empty key selects the public pool. The key itself is never stored.
func AccountFor(key string) Account {
	if key == "" {
		return Account{Tier: TierPublic}
	}
	sum := sha256.Sum256([]byte(key))
	return Account{Tier: TierRegistered, id: hex.EncodeToString(sum[:6])}
}

// DailyLimit returns the number of queries allowed per day for the tier.
func (t Tier) DailyLimit() int {
	if t == TierRegistered {
		return RegisteredDailyLimit
	}
	return PublicDailyLimit
}

// QuotaState is the budget for one tier on one day.
type QuotaState struct {
	Tier Tier `json:"tier"`

	// Used is the number of queries consumed today.
	Used int `json:"used"`

	// Limit is the daily budget for the tier.
	Limit int `json:"limit"`

	// ResetAt is the next UTC midnight.
	ResetAt time.Time `json:"reset_at"`
}

// Remaining returns the number of queries left, never negative.
func (s *QuotaState) Remaining() int {
	if s.Used >= s.Limit {
		return 0
	}
	return s.Limit - s.Used
}

// Exhausted reports whether no queries are left.
func (s *QuotaState) Exhausted() bool {
	return s.Remaining() == 0
}

// NeedsWarning reports whether the remaining budget is below WarningFraction
// of the limit but not yet exhausted.
func (s *QuotaState) NeedsWarning() bool {
	return !s.Exhausted() && float64(s.Remaining()) < float64(s.Limit)*WarningFraction
}

// TimeUntilReset returns the duration until the counter resets.
// Returns 0 if the reset time has already passed.
func (s *QuotaState) TimeUntilReset() time.Duration {
	d := time.Until(s.ResetAt)
	if d < 0 {
		return 0
	}
	return d
}

// dayKey returns the Redis key of the account's counter for the UTC day of t.
func dayKey(a Account, t time.Time) string {
	day := t.UTC().Format("2006-01-02")
	if a.id == "" {
		return fmt.Sprintf("%s:%s:%s", RedisKeyPrefix, a.Tier, day)
	}
	return fmt.Sprintf("%s:%s:%s:%s", RedisKeyPrefix, a.Tier, a.id, day)
}

// nextReset returns the UTC midnight following t.
func nextReset(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, time.UTC)
}
