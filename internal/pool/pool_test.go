package pool_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openamm/pool-engine/internal/access"
	"github.com/openamm/pool-engine/internal/pool"
	"github.com/openamm/pool-engine/internal/token"
)

const (
	assetX = pool.Asset("TOKX")
	assetY = pool.Asset("TOKY")

	admin    = pool.Account("admin")
	alice    = pool.Account("alice")
	bob      = pool.Account("bob")
	treasury = pool.Account("treasury")
	custody  = pool.Account("pool-custody")
)

// fixture wires a pool against in-memory collaborators and a controllable
// clock.
type fixture struct {
	t      *testing.T
	pool   *pool.Pool
	ledger *token.Ledger
	shares *token.Shares
	access *access.Registry
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	fx := &fixture{
		t:      t,
		ledger: token.NewLedger(custody),
		shares: token.NewShares(),
		access: access.NewRegistry(),
		now:    time.Unix(1_700_000_000, 0),
	}
	fx.pool = pool.New(pool.Deps{
		Assets: fx.ledger,
		Shares: fx.shares,
		Access: fx.access,
		Clock:  func() time.Time { return fx.now },
		Logger: logger,
	})
	return fx
}

func (fx *fixture) advance(d time.Duration) { fx.now = fx.now.Add(d) }

// deadline returns a deadline comfortably in the future relative to the
// fixture clock.
func (fx *fixture) deadline() int64 { return fx.now.Add(time.Hour).Unix() }

func (fx *fixture) init(feeRateBps uint64) {
	fx.t.Helper()
	require.NoError(fx.t, fx.pool.Initialize(context.Background(), admin, assetX, assetY, feeRateBps))
}

func (fx *fixture) fund(account pool.Account, amount uint64) {
	fx.ledger.Mint(assetX, account, amount)
	fx.ledger.Mint(assetY, account, amount)
}

func (fx *fixture) addLiquidity(account pool.Account, amountA, amountB uint64) uint64 {
	fx.t.Helper()
	_, _, shares, err := fx.pool.AddLiquidity(
		context.Background(), account, amountA, amountB, 0, 0, account, fx.deadline())
	require.NoError(fx.t, err)
	return shares
}

func (fx *fixture) shareBalance(account pool.Account) uint64 {
	fx.t.Helper()
	bal, err := fx.shares.BalanceOf(context.Background(), account)
	require.NoError(fx.t, err)
	return bal
}

func TestInitialize(t *testing.T) {
	fx := newFixture(t)
	fx.init(30)

	summary, err := fx.pool.PoolSummary(context.Background())
	require.NoError(t, err)
	assert.True(t, summary.Initialized)
	assert.Equal(t, assetX, summary.AssetA)
	assert.Equal(t, assetY, summary.AssetB)
	assert.Equal(t, uint64(30), summary.FeeRateBps)

	// The deployer holds every administrative role.
	for _, role := range []pool.Role{pool.RoleAdmin, pool.RoleFeeManager, pool.RoleOperator, pool.RoleEmergency} {
		assert.True(t, fx.access.HasRole(role, admin), "missing role %s", role)
	}

	err = fx.pool.Initialize(context.Background(), admin, assetX, assetY, 30)
	assert.ErrorIs(t, err, pool.ErrAlreadyInitialized)
}

func TestInitializeValidation(t *testing.T) {
	ctx := context.Background()

	err := newFixture(t).pool.Initialize(ctx, admin, assetX, assetX, 30)
	assert.ErrorIs(t, err, pool.ErrIdenticalAssets)

	err = newFixture(t).pool.Initialize(ctx, admin, "", assetY, 30)
	assert.ErrorIs(t, err, pool.ErrInvalidAsset)

	err = newFixture(t).pool.Initialize(ctx, admin, assetX, assetY, pool.MaxFeeRateBps+1)
	assert.ErrorIs(t, err, pool.ErrFeeRateTooHigh)
}

func TestOperationsBeforeInitialize(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.pool.Swap(ctx, alice, 100, 0, assetX, alice, fx.deadline())
	assert.ErrorIs(t, err, pool.ErrNotInitialized)

	_, _, _, err = fx.pool.AddLiquidity(ctx, alice, 100, 100, 0, 0, alice, fx.deadline())
	assert.ErrorIs(t, err, pool.ErrNotInitialized)

	_, _, err = fx.pool.RemoveLiquidity(ctx, alice, 100, 0, 0, alice, fx.deadline())
	assert.ErrorIs(t, err, pool.ErrNotInitialized)

	_, err = fx.pool.EstimateOutput(100, assetX)
	assert.ErrorIs(t, err, pool.ErrNotInitialized)
}

func TestQuote(t *testing.T) {
	out, err := pool.Quote(100, 1000, 2000)
	require.NoError(t, err)
	assert.Equal(t, uint64(200), out)

	_, err = pool.Quote(0, 1000, 2000)
	assert.ErrorIs(t, err, pool.ErrInsufficientInputAmount)

	_, err = pool.Quote(100, 0, 2000)
	assert.ErrorIs(t, err, pool.ErrInsufficientLiquidity)
}

func TestEstimateOutput(t *testing.T) {
	fx := newFixture(t)
	fx.init(30)
	fx.fund(alice, 10_000)
	fx.addLiquidity(alice, 1000, 1000)

	out, err := fx.pool.EstimateOutput(100, assetX)
	require.NoError(t, err)
	assert.Equal(t, uint64(90), out)

	// Estimating must not move reserves.
	reserveA, reserveB, _ := fx.pool.CurrentReserves()
	assert.Equal(t, uint64(1000), reserveA)
	assert.Equal(t, uint64(1000), reserveB)

	_, err = fx.pool.EstimateOutput(100, "UNKNOWN")
	assert.ErrorIs(t, err, pool.ErrInvalidAsset)
}

func TestPriceAccumulators(t *testing.T) {
	fx := newFixture(t)
	fx.init(30)
	fx.fund(alice, 100_000)
	fx.addLiquidity(alice, 1000, 2000)

	// Nothing accrues until time passes.
	p0, p1 := fx.pool.PriceCumulatives()
	assert.True(t, p0.IsZero())
	assert.True(t, p1.IsZero())

	// Ten seconds at a 2.0 / 0.5 price, integrated on the next update with
	// the reserves that held over the interval.
	fx.advance(10 * time.Second)
	fx.addLiquidity(alice, 10, 20)

	p0, p1 = fx.pool.PriceCumulatives()
	want0 := new(uint256.Int).Lsh(uint256.NewInt(20), 112)
	want1 := new(uint256.Int).Lsh(uint256.NewInt(5), 112)
	assert.Equal(t, want0, p0, "price0 cumulative")
	assert.Equal(t, want1, p1, "price1 cumulative")

	_, _, lastUpdate := fx.pool.CurrentReserves()
	assert.Equal(t, fx.now.Unix(), lastUpdate)
}

// callbackLedger wraps the real ledger and fires a callback on the first
// payout, simulating a collaborator that tries to re-enter the engine while
// an operation is in flight.
type callbackLedger struct {
	inner    *token.Ledger
	onPayout func(ctx context.Context) error
	fired    bool
	result   error
}

func (c *callbackLedger) TransferFrom(ctx context.Context, asset pool.Asset, from pool.Account, amount uint64) error {
	return c.inner.TransferFrom(ctx, asset, from, amount)
}

func (c *callbackLedger) Transfer(ctx context.Context, asset pool.Asset, to pool.Account, amount uint64) error {
	if !c.fired && c.onPayout != nil {
		c.fired = true
		c.result = c.onPayout(ctx)
	}
	return c.inner.Transfer(ctx, asset, to, amount)
}

func TestReentrantCollaboratorCallRejected(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	inner := token.NewLedger(custody)
	ledger := &callbackLedger{inner: inner}
	shares := token.NewShares()
	registry := access.NewRegistry()

	now := time.Unix(1_700_000_000, 0)
	p := pool.New(pool.Deps{
		Assets: ledger,
		Shares: shares,
		Access: registry,
		Clock:  func() time.Time { return now },
		Logger: logger,
	})

	ctx := context.Background()
	deadline := now.Add(time.Hour).Unix()
	require.NoError(t, p.Initialize(ctx, admin, assetX, assetY, 30))
	require.NoError(t, inner.Mint(assetX, alice, 10_000))
	require.NoError(t, inner.Mint(assetY, alice, 10_000))
	require.NoError(t, inner.Mint(assetX, bob, 10_000))
	_, _, _, err := p.AddLiquidity(ctx, alice, 1000, 1000, 0, 0, alice, deadline)
	require.NoError(t, err)

	// Mid-payout, the ledger calls back into the engine.
	ledger.onPayout = func(ctx context.Context) error {
		_, err := p.Swap(ctx, bob, 100, 0, assetX, bob, deadline)
		return err
	}

	res, err := p.Swap(ctx, bob, 100, 0, assetX, bob, deadline)
	require.NoError(t, err)
	assert.Equal(t, uint64(90), res.AmountOut)

	// The inner call was rejected without deadlocking, and the outer swap
	// committed exactly once.
	require.True(t, ledger.fired)
	assert.ErrorIs(t, ledger.result, pool.ErrReentrantCall)

	reserveA, reserveB, _ := p.CurrentReserves()
	assert.Equal(t, uint64(1100), reserveA)
	assert.Equal(t, uint64(910), reserveB)
	assert.Equal(t, uint64(1), p.Statistics().TotalTransactions)
}

func TestStatisticsAccumulate(t *testing.T) {
	fx := newFixture(t)
	fx.init(30)
	fx.fund(alice, 1_000_000)
	fx.fund(bob, 1_000_000)
	fx.addLiquidity(alice, 100_000, 100_000)

	ctx := context.Background()
	_, err := fx.pool.Swap(ctx, bob, 10_000, 0, assetX, bob, fx.deadline())
	require.NoError(t, err)
	_, err = fx.pool.Swap(ctx, bob, 5_000, 0, assetY, bob, fx.deadline())
	require.NoError(t, err)

	stats := fx.pool.Statistics()
	assert.Equal(t, uint64(15_000), stats.TotalVolumeTraded)
	assert.Equal(t, uint64(2), stats.TotalTransactions)
	assert.Equal(t, uint64(10_000), stats.LargestTrade)
	// 30 bps of 10000 plus 30 bps of 5000.
	assert.Equal(t, uint64(45), stats.TotalFeesCollected)
}

func TestProviderTracking(t *testing.T) {
	fx := newFixture(t)
	fx.init(30)
	fx.fund(alice, 100_000)

	assert.Nil(t, fx.pool.Provider(alice))

	first := fx.addLiquidity(alice, 10_000, 10_000)
	firstTime := fx.now

	fx.advance(time.Minute)
	second := fx.addLiquidity(alice, 1000, 1000)

	ps := fx.pool.Provider(alice)
	require.NotNil(t, ps)
	assert.Equal(t, uint64(2), ps.ProvisionCount)
	assert.Equal(t, first+second, ps.CumulativeLiquidityProvided)
	assert.Equal(t, firstTime, ps.FirstProvisionTime)
}
