package pool

import (
	"context"

	"github.com/openamm/pool-engine/internal/fixedpoint"
	"github.com/openamm/pool-engine/internal/models"
)

// Initialize sets the asset pair and fee rate exactly once and grants the
// caller every administrative role.
func (p *Pool) Initialize(ctx context.Context, caller Account, assetA, assetB Asset, feeRateBps uint64) error {
	ctx, err := p.enter(ctx)
	if err != nil {
		return err
	}
	defer p.exit()

	if p.initialized {
		return ErrAlreadyInitialized
	}
	if assetA == "" || assetB == "" {
		return ErrInvalidAsset
	}
	if assetA == assetB {
		return ErrIdenticalAssets
	}
	if feeRateBps > MaxFeeRateBps {
		return ErrFeeRateTooHigh
	}

	p.assetA = assetA
	p.assetB = assetB
	p.feeRateBps = feeRateBps
	p.lastUpdateTime = p.now().Unix()
	p.initialized = true

	for _, role := range []Role{RoleAdmin, RoleFeeManager, RoleOperator, RoleEmergency} {
		p.access.Grant(role, caller)
	}

	p.log.WithFields(map[string]any{
		"pair":     p.pair(),
		"fee_bps":  feeRateBps,
		"deployer": caller,
	}).Info("pool initialized")

	p.events.EmitAdmin(ctx, &models.AdminEvent{
		ID:        models.NewEventID(),
		Timestamp: p.now(),
		Type:      "pool_initialized",
		Account:   string(caller),
		Details: map[string]any{
			"asset_a": string(assetA),
			"asset_b": string(assetB),
			"fee_bps": feeRateBps,
		},
	})
	return nil
}

// AddLiquidity deposits both legs at the current reserve ratio and mints
// proportional shares to recipient. The first provision seeds the ratio
// verbatim and permanently locks MinimumLiquidity shares to BurnAccount.
func (p *Pool) AddLiquidity(
	ctx context.Context,
	caller Account,
	amountADesired, amountBDesired, amountAMin, amountBMin uint64,
	recipient Account,
	deadline int64,
) (amountA, amountB, shares uint64, err error) {
	ctx, err = p.enter(ctx)
	if err != nil {
		return 0, 0, 0, err
	}
	defer p.exit()

	now := p.now()
	switch {
	case !p.initialized:
		return 0, 0, 0, ErrNotInitialized
	case now.Unix() > deadline:
		return 0, 0, 0, ErrTransactionExpired
	case recipient == "":
		return 0, 0, 0, ErrInvalidRecipient
	case p.emergencyMode:
		return 0, 0, 0, ErrEmergencyModeActive
	case p.paused:
		return 0, 0, 0, ErrPoolPaused
	case amountADesired == 0 || amountBDesired == 0:
		return 0, 0, 0, ErrInsufficientInputAmount
	}

	amountA, amountB, err = p.optimalAmounts(amountADesired, amountBDesired, amountAMin, amountBMin)
	if err != nil {
		return 0, 0, 0, err
	}
	if err := p.risk.checkTradeSize(amountA); err != nil {
		return 0, 0, 0, err
	}
	if err := p.risk.checkTradeSize(amountB); err != nil {
		return 0, 0, 0, err
	}

	supply, err := p.shares.TotalSupply(ctx)
	if err != nil {
		return 0, 0, 0, err
	}

	var locked uint64
	if supply == 0 {
		root := fixedpoint.SqrtProduct(amountA, amountB)
		if root <= MinimumLiquidity {
			return 0, 0, 0, ErrInsufficientLiquidity
		}
		shares = root - MinimumLiquidity
		locked = MinimumLiquidity
	} else {
		byA, err := fixedpoint.MulDiv(amountA, supply, p.reserveA)
		if err != nil {
			return 0, 0, 0, ErrInsufficientLiquidity
		}
		byB, err := fixedpoint.MulDiv(amountB, supply, p.reserveB)
		if err != nil {
			return 0, 0, 0, ErrInsufficientLiquidity
		}
		shares = fixedpoint.Min(byA, byB)
	}
	if shares == 0 {
		return 0, 0, 0, ErrInsufficientLiquidity
	}

	// Both post-deposit reserves must fit the 64-bit ledger.
	newReserveA, err := safeAdd(p.reserveA, amountA)
	if err != nil {
		return 0, 0, 0, err
	}
	newReserveB, err := safeAdd(p.reserveB, amountB)
	if err != nil {
		return 0, 0, 0, err
	}

	// Pull both legs into custody before touching the ledger so the share
	// math above stays anchored to pre-transfer reserves. The second leg
	// compensates the first on failure.
	if err := p.assets.TransferFrom(ctx, p.assetA, caller, amountA); err != nil {
		return 0, 0, 0, err
	}
	if err := p.assets.TransferFrom(ctx, p.assetB, caller, amountB); err != nil {
		_ = p.assets.Transfer(ctx, p.assetA, caller, amountA)
		return 0, 0, 0, err
	}

	if locked > 0 {
		if err := p.shares.Mint(ctx, BurnAccount, locked); err != nil {
			p.refundBothLegs(ctx, caller, amountA, amountB)
			return 0, 0, 0, err
		}
	}
	if err := p.shares.Mint(ctx, recipient, shares); err != nil {
		p.refundBothLegs(ctx, caller, amountA, amountB)
		return 0, 0, 0, err
	}

	p.recordProvision(recipient, shares, now)
	p.applyReserves(newReserveA, newReserveB, now.Unix())

	p.log.WithFields(map[string]any{
		"provider": recipient,
		"amount_a": amountA,
		"amount_b": amountB,
		"shares":   shares,
	}).Info("liquidity added")

	p.events.EmitLiquidity(ctx, &models.LiquidityEvent{
		ID:        models.NewEventID(),
		Timestamp: now,
		Type:      "liquidity_added",
		Pair:      p.pair(),
		Provider:  string(caller),
		Recipient: string(recipient),
		AmountA:   amountA,
		AmountB:   amountB,
		Shares:    shares,
		ReserveA:  p.reserveA,
		ReserveB:  p.reserveB,
	})
	return amountA, amountB, shares, nil
}

// RemoveLiquidity redeems shares pro rata. It is never gated by pause or
// emergency mode; in emergency mode an exit fee is charged as extra burned
// shares from the caller, never as a reduced payout.
func (p *Pool) RemoveLiquidity(
	ctx context.Context,
	caller Account,
	shareAmount, amountAMin, amountBMin uint64,
	recipient Account,
	deadline int64,
) (amountA, amountB uint64, err error) {
	ctx, err = p.enter(ctx)
	if err != nil {
		return 0, 0, err
	}
	defer p.exit()

	now := p.now()
	switch {
	case !p.initialized:
		return 0, 0, ErrNotInitialized
	case now.Unix() > deadline:
		return 0, 0, ErrTransactionExpired
	case recipient == "":
		return 0, 0, ErrInvalidRecipient
	case shareAmount == 0:
		return 0, 0, ErrZeroAmount
	}

	supply, err := p.shares.TotalSupply(ctx)
	if err != nil {
		return 0, 0, err
	}
	if supply == 0 || shareAmount > supply {
		return 0, 0, ErrInsufficientLiquidity
	}

	amountA, err = fixedpoint.MulDiv(shareAmount, p.reserveA, supply)
	if err != nil {
		return 0, 0, ErrInsufficientLiquidity
	}
	amountB, err = fixedpoint.MulDiv(shareAmount, p.reserveB, supply)
	if err != nil {
		return 0, 0, ErrInsufficientLiquidity
	}
	if amountA == 0 || amountB == 0 {
		return 0, 0, ErrInsufficientLiquidity
	}
	if amountA < amountAMin || amountB < amountBMin {
		return 0, 0, ErrInsufficientOutput
	}

	// Redeemed amounts run through the per-transaction ceiling like any
	// other economic movement. Emergency exits are exempt: the ceiling
	// must never trap provider funds once the pool is in distress.
	if !p.emergencyMode {
		if err := p.risk.checkTradeSize(amountA); err != nil {
			return 0, 0, err
		}
		if err := p.risk.checkTradeSize(amountB); err != nil {
			return 0, 0, err
		}
	}

	burnTotal := shareAmount
	var exitFee uint64
	if p.emergencyMode && p.exitFeeBps > 0 {
		exitFee, err = fixedpoint.MulDiv(shareAmount, p.exitFeeBps, BpsScale)
		if err != nil {
			return 0, 0, ErrInsufficientLiquidity
		}
		burnTotal += exitFee
	}

	if err := p.shares.Burn(ctx, caller, burnTotal); err != nil {
		return 0, 0, ErrInsufficientLiquidity
	}

	if err := p.assets.Transfer(ctx, p.assetA, recipient, amountA); err != nil {
		_ = p.shares.Mint(ctx, caller, burnTotal)
		return 0, 0, err
	}
	if err := p.assets.Transfer(ctx, p.assetB, recipient, amountB); err != nil {
		_ = p.assets.TransferFrom(ctx, p.assetA, recipient, amountA)
		_ = p.shares.Mint(ctx, caller, burnTotal)
		return 0, 0, err
	}

	p.applyReserves(p.reserveA-amountA, p.reserveB-amountB, now.Unix())

	p.log.WithFields(map[string]any{
		"provider":      caller,
		"amount_a":      amountA,
		"amount_b":      amountB,
		"shares_burned": burnTotal,
		"exit_fee":      exitFee,
	}).Info("liquidity removed")

	p.events.EmitLiquidity(ctx, &models.LiquidityEvent{
		ID:           models.NewEventID(),
		Timestamp:    now,
		Type:         "liquidity_removed",
		Pair:         p.pair(),
		Provider:     string(caller),
		Recipient:    string(recipient),
		AmountA:      amountA,
		AmountB:      amountB,
		Shares:       shareAmount,
		SharesBurned: burnTotal,
		ReserveA:     p.reserveA,
		ReserveB:     p.reserveB,
	})
	return amountA, amountB, nil
}

// optimalAmounts picks the deposit amounts that preserve the reserve ratio,
// favoring the full A leg when the implied B leg fits under the desired B.
func (p *Pool) optimalAmounts(aDesired, bDesired, aMin, bMin uint64) (uint64, uint64, error) {
	if p.reserveA == 0 && p.reserveB == 0 {
		return aDesired, bDesired, nil
	}

	bOptimal, err := fixedpoint.MulDiv(aDesired, p.reserveB, p.reserveA)
	if err != nil {
		return 0, 0, ErrInsufficientLiquidity
	}
	if bOptimal <= bDesired {
		if bOptimal < bMin {
			return 0, 0, ErrInsufficientOutput
		}
		return aDesired, bOptimal, nil
	}

	aOptimal, err := fixedpoint.MulDiv(bDesired, p.reserveA, p.reserveB)
	if err != nil {
		return 0, 0, ErrInsufficientLiquidity
	}
	if aOptimal > aDesired {
		return 0, 0, ErrInsufficientInputAmount
	}
	if aOptimal < aMin {
		return 0, 0, ErrInsufficientOutput
	}
	return aOptimal, bDesired, nil
}

func (p *Pool) refundBothLegs(ctx context.Context, to Account, amountA, amountB uint64) {
	_ = p.assets.Transfer(ctx, p.assetA, to, amountA)
	_ = p.assets.Transfer(ctx, p.assetB, to, amountB)
}
