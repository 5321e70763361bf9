package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRiskCheckTradeSize(t *testing.T) {
	r := newRiskController()

	// Zero limit means unlimited.
	assert.NoError(t, r.checkTradeSize(1<<62))

	r.limits.MaxTradeAmount = 500
	assert.NoError(t, r.checkTradeSize(500))
	assert.ErrorIs(t, r.checkTradeSize(501), ErrExceedsTransactionLimit)
}

func TestRiskGlobalDailyLimit(t *testing.T) {
	r := newRiskController()
	r.limits.DailyVolumeLimit = 1000
	now := int64(1_700_000_000)

	require.NoError(t, r.check("alice", 400, now))
	r.record("alice", 400, now)
	require.NoError(t, r.check("bob", 400, now))
	r.record("bob", 400, now)

	// 800 consumed across all accounts; 300 more would breach.
	assert.ErrorIs(t, r.check("alice", 300, now), ErrExceedsDailyLimit)
	require.NoError(t, r.check("alice", 200, now))
	r.record("alice", 200, now)

	global, _ := r.usage("alice", now)
	assert.Equal(t, uint64(1000), global)

	// Next day the bucket is fresh.
	tomorrow := now + secondsPerDay
	assert.NoError(t, r.check("alice", 1000, tomorrow))
}

func TestRiskUserDailyLimit(t *testing.T) {
	r := newRiskController()
	r.limits.UserDailyLimit = 500
	now := int64(1_700_000_000)

	require.NoError(t, r.check("alice", 400, now))
	r.record("alice", 400, now)

	// Alice is capped; bob is unaffected.
	assert.ErrorIs(t, r.check("alice", 200, now), ErrExceedsDailyLimit)
	assert.NoError(t, r.check("bob", 400, now))

	// Exactly reaching the cap is allowed.
	require.NoError(t, r.check("alice", 100, now))
	r.record("alice", 100, now)
	_, user := r.usage("alice", now)
	assert.Equal(t, uint64(500), user)

	// Per-user counters reset lazily on the first activity of a new day.
	tomorrow := now + secondsPerDay
	require.NoError(t, r.check("alice", 500, tomorrow))
	r.record("alice", 500, tomorrow)
	_, user = r.usage("alice", tomorrow)
	assert.Equal(t, uint64(500), user)
}

func TestRiskRejectedCheckDoesNotRecord(t *testing.T) {
	r := newRiskController()
	r.limits.DailyVolumeLimit = 500
	now := int64(1_700_000_000)

	require.NoError(t, r.check("alice", 400, now))
	r.record("alice", 400, now)

	// A failed check must leave the counters untouched.
	require.Error(t, r.check("alice", 200, now))
	global, user := r.usage("alice", now)
	assert.Equal(t, uint64(400), global)
	assert.Equal(t, uint64(400), user)

	// The remaining 100 is still spendable.
	assert.NoError(t, r.check("alice", 100, now))
}
