package pool

import (
	"context"
	"math/bits"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"github.com/openamm/pool-engine/internal/fixedpoint"
	"github.com/openamm/pool-engine/internal/models"
)

// Pool is a single constant-product pair engine. It owns the reserve ledger,
// the TWAP accumulators and all gating state; asset custody, share supply and
// role membership live behind the collaborator interfaces.
//
// All operations execute serialized under one mutex and commit atomically:
// every check runs before the first transfer, and transfers that cannot be
// completed are compensated before the error is returned.
type Pool struct {
	mu sync.Mutex

	assets AssetLedger
	shares ShareToken
	access AccessControl
	events Emitter
	clock  func() time.Time
	log    *logrus.Logger

	initialized   bool
	paused        bool
	emergencyMode bool

	assetA Asset
	assetB Asset

	reserveA uint64
	reserveB uint64

	feeRateBps        uint64
	protocolFeeBps    uint64 // share of the fee diverted to protocolRecipient
	protocolRecipient Account
	exitFeeBps        uint64

	lastUpdateTime   int64
	price0Cumulative uint256.Int // UQ112.112 * seconds, wraps at 2^256
	price1Cumulative uint256.Int

	protection ProtectionSettings
	risk       riskController
	stats      Stats
	providers  map[Account]*ProviderStats
}

// Deps are the external collaborators a Pool operates against.
type Deps struct {
	Assets AssetLedger
	Shares ShareToken
	Access AccessControl
	Events Emitter
	Clock  func() time.Time
	Logger *logrus.Logger
}

// New creates an uninitialized pool. Initialize must be called exactly once
// before any other operation.
func New(deps Deps) *Pool {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	log := deps.Logger
	if log == nil {
		log = logrus.New()
	}
	events := deps.Events
	if events == nil {
		events = noopEmitter{}
	}
	return &Pool{
		assets:     deps.Assets,
		shares:     deps.Shares,
		access:     deps.Access,
		events:     events,
		clock:      clock,
		log:        log,
		exitFeeBps: DefaultExitFeeBps,
		risk:       newRiskController(),
		providers:  make(map[Account]*ProviderStats),
	}
}

type noopEmitter struct{}

func (noopEmitter) EmitSwap(context.Context, *models.SwapEvent)           {}
func (noopEmitter) EmitLiquidity(context.Context, *models.LiquidityEvent) {}
func (noopEmitter) EmitAdmin(context.Context, *models.AdminEvent)         {}

// inFlightKey marks the context handed to collaborators while a mutating
// operation holds the lock.
type inFlightKey struct{}

// enter serializes callers and rejects reentrant calls from collaborator
// callbacks. Collaborators are invoked synchronously with a context stamped
// by enter; a callback that re-enters a mutating operation with that context
// is rejected before it can deadlock on the operation lock, while fresh
// callers from other goroutines simply wait their turn. Every mutating entry
// point pairs enter with a deferred exit so the lock is released on all
// paths, early failures included.
func (p *Pool) enter(ctx context.Context) (context.Context, error) {
	if ctx.Value(inFlightKey{}) != nil {
		return ctx, ErrReentrantCall
	}
	p.mu.Lock()
	return context.WithValue(ctx, inFlightKey{}, struct{}{}), nil
}

func (p *Pool) exit() {
	p.mu.Unlock()
}

// safeAdd guards reserve and amount sums against uint64 wraparound. The
// constant-product math runs through 256-bit intermediates, but the ledger
// itself is 64-bit: any deposit that would push a reserve past 2^64-1 must
// be rejected before a transfer moves.
func safeAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrAmountTooLarge
	}
	return sum, nil
}

// applyReserves accumulates the price oracle with the pre-update reserves,
// then overwrites them. The ordering is load-bearing: the accumulator must
// integrate the price that held for the elapsed interval, which is the old
// ratio, not the one being written.
func (p *Pool) applyReserves(newReserveA, newReserveB uint64, now int64) {
	elapsed := now - p.lastUpdateTime
	if elapsed > 0 && p.reserveA != 0 && p.reserveB != 0 {
		dt := new(uint256.Int).SetUint64(uint64(elapsed))

		d0 := fixedpoint.RatioUQ112(p.reserveB, p.reserveA)
		d0.Mul(d0, dt)
		p.price0Cumulative.Add(&p.price0Cumulative, d0)

		d1 := fixedpoint.RatioUQ112(p.reserveA, p.reserveB)
		d1.Mul(d1, dt)
		p.price1Cumulative.Add(&p.price1Cumulative, d1)
	}
	p.reserveA = newReserveA
	p.reserveB = newReserveB
	p.lastUpdateTime = now
}

// CurrentReserves returns both reserves and the time of the last ledger
// update.
func (p *Pool) CurrentReserves() (reserveA, reserveB uint64, lastUpdate int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reserveA, p.reserveB, p.lastUpdateTime
}

// PriceCumulatives returns the raw UQ112.112*seconds oracle accumulators.
// Consumers diff two readings; wraparound at 2^256 is intentional.
func (p *Pool) PriceCumulatives() (price0, price1 *uint256.Int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return new(uint256.Int).Set(&p.price0Cumulative), new(uint256.Int).Set(&p.price1Cumulative)
}

// Quote returns the amount of B equivalent in value to amountA at the given
// reserves: amountA * reserveB / reserveA.
func Quote(amountA, reserveA, reserveB uint64) (uint64, error) {
	if amountA == 0 {
		return 0, ErrInsufficientInputAmount
	}
	if reserveA == 0 || reserveB == 0 {
		return 0, ErrInsufficientLiquidity
	}
	out, err := fixedpoint.MulDiv(amountA, reserveB, reserveA)
	if err != nil {
		return 0, ErrInsufficientLiquidity
	}
	return out, nil
}

// EstimateOutput quotes a swap without executing or gating it.
func (p *Pool) EstimateOutput(amountIn uint64, assetIn Asset) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return 0, ErrNotInitialized
	}
	reserveIn, reserveOut, err := p.orientReserves(assetIn)
	if err != nil {
		return 0, err
	}
	return computeAmountOut(amountIn, reserveIn, reserveOut, p.feeRateBps)
}

// PoolSummary returns the public view of the pool.
func (p *Pool) PoolSummary(ctx context.Context) (*Summary, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var supply uint64
	if p.shares != nil {
		s, err := p.shares.TotalSupply(ctx)
		if err != nil {
			return nil, err
		}
		supply = s
	}

	return &Summary{
		AssetA:            p.assetA,
		AssetB:            p.assetB,
		ReserveA:          p.reserveA,
		ReserveB:          p.reserveB,
		ShareSupply:       supply,
		FeeRateBps:        p.feeRateBps,
		ProtocolFeeBps:    p.protocolFeeBps,
		ProtocolRecipient: p.protocolRecipient,
		Initialized:       p.initialized,
		Paused:            p.paused,
		EmergencyMode:     p.emergencyMode,
		LastUpdateTime:    p.lastUpdateTime,
		Price0Cumulative:  p.price0Cumulative.Dec(),
		Price1Cumulative:  p.price1Cumulative.Dec(),
		Limits:            p.risk.limits,
		Protection:        p.protection,
	}, nil
}

// Statistics returns a copy of the append-only counters.
func (p *Pool) Statistics() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Provider returns the provision history for an account, or nil if the
// account never provided liquidity.
func (p *Pool) Provider(account Account) *ProviderStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	ps, ok := p.providers[account]
	if !ok {
		return nil
	}
	cp := *ps
	return &cp
}

// orientReserves maps assetIn onto (reserveIn, reserveOut).
func (p *Pool) orientReserves(assetIn Asset) (uint64, uint64, error) {
	switch assetIn {
	case p.assetA:
		return p.reserveA, p.reserveB, nil
	case p.assetB:
		return p.reserveB, p.reserveA, nil
	default:
		return 0, 0, ErrInvalidAsset
	}
}

func (p *Pool) pair() string {
	return string(p.assetA) + "/" + string(p.assetB)
}

func (p *Pool) now() time.Time {
	return p.clock()
}
