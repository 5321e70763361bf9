package pool

import (
	"context"

	"github.com/holiman/uint256"

	"github.com/openamm/pool-engine/internal/fixedpoint"
	"github.com/openamm/pool-engine/internal/models"
)

// computeAmountOut is the fee-on-input constant-product formula:
//
//	out = (in * (10000-fee) * reserveOut) / (reserveIn*10000 + in*(10000-fee))
//
// All intermediates run through 256-bit math so reserve and amount widths
// never overflow.
func computeAmountOut(amountIn, reserveIn, reserveOut, feeRateBps uint64) (uint64, error) {
	if amountIn == 0 {
		return 0, ErrInsufficientInputAmount
	}
	if reserveIn == 0 || reserveOut == 0 {
		return 0, ErrInsufficientLiquidity
	}

	feeFactor := uint256.NewInt(BpsScale - feeRateBps)
	inWithFee := new(uint256.Int).Mul(new(uint256.Int).SetUint64(amountIn), feeFactor)

	num := new(uint256.Int).Mul(inWithFee, new(uint256.Int).SetUint64(reserveOut))
	den := new(uint256.Int).Mul(new(uint256.Int).SetUint64(reserveIn), uint256.NewInt(BpsScale))
	den.Add(den, inWithFee)

	out := num.Div(num, den)
	if !out.IsUint64() {
		return 0, ErrInsufficientLiquidity
	}
	return out.Uint64(), nil
}

// priceImpactBps measures how far the hypothetical post-trade marginal price
// falls below the pre-trade price, in basis points. A price that improves or
// holds clamps to zero.
//
// impact = 10000 * (rOut*rIn' - rOut'*rIn) / (rOut*rIn')
// with rIn' = rIn+amountIn, rOut' = rOut-amountOut. The rIn' sum is taken in
// 256 bits so inputs near 2^64 cannot wrap.
func priceImpactBps(amountIn, amountOut, reserveIn, reserveOut uint64) uint64 {
	rInAfter := new(uint256.Int).AddUint64(new(uint256.Int).SetUint64(reserveIn), amountIn)
	rOutAfter := new(uint256.Int).SetUint64(reserveOut - amountOut)

	before := new(uint256.Int).Mul(new(uint256.Int).SetUint64(reserveOut), rInAfter)
	after := new(uint256.Int).Mul(rOutAfter, new(uint256.Int).SetUint64(reserveIn))

	if after.Cmp(before) >= 0 {
		return 0
	}
	diff := new(uint256.Int).Sub(before, after)
	diff.Mul(diff, uint256.NewInt(BpsScale))
	return diff.Div(diff, before).Uint64()
}

// slippageShortfallBps compares the no-fee theoretical output against the
// fee-adjusted output actually produced, in basis points of the theoretical
// output.
func slippageShortfallBps(amountIn, amountOut, reserveIn, reserveOut uint64) uint64 {
	ideal := new(uint256.Int).Mul(
		new(uint256.Int).SetUint64(amountIn),
		new(uint256.Int).SetUint64(reserveOut),
	)
	ideal.Div(ideal, new(uint256.Int).AddUint64(new(uint256.Int).SetUint64(reserveIn), amountIn))

	actual := new(uint256.Int).SetUint64(amountOut)
	if actual.Cmp(ideal) >= 0 || ideal.IsZero() {
		return 0
	}
	diff := new(uint256.Int).Sub(ideal, actual)
	diff.Mul(diff, uint256.NewInt(BpsScale))
	return diff.Div(diff, ideal).Uint64()
}

// Swap trades amountIn of assetIn for the other leg. The risk gate runs
// before any state mutation; volume counters are recorded only on commit.
func (p *Pool) Swap(
	ctx context.Context,
	caller Account,
	amountIn, amountOutMin uint64,
	assetIn Asset,
	recipient Account,
	deadline int64,
) (*SwapResult, error) {
	ctx, err := p.enter(ctx)
	if err != nil {
		return nil, err
	}
	defer p.exit()

	now := p.now()
	switch {
	case !p.initialized:
		return nil, ErrNotInitialized
	case amountIn == 0:
		return nil, ErrInsufficientInputAmount
	case recipient == "":
		return nil, ErrInvalidRecipient
	case now.Unix() > deadline:
		return nil, ErrTransactionExpired
	case p.emergencyMode:
		return nil, ErrEmergencyModeActive
	case p.paused:
		return nil, ErrPoolPaused
	}

	reserveIn, reserveOut, err := p.orientReserves(assetIn)
	if err != nil {
		return nil, err
	}
	// The input-side reserve grows by amountIn; that sum must fit the
	// 64-bit ledger before anything else is allowed to happen.
	if _, err := safeAdd(reserveIn, amountIn); err != nil {
		return nil, err
	}

	if err := p.risk.check(caller, amountIn, now.Unix()); err != nil {
		return nil, err
	}

	amountOut, err := computeAmountOut(amountIn, reserveIn, reserveOut, p.feeRateBps)
	if err != nil {
		return nil, err
	}
	if amountOut < amountOutMin || amountOut == 0 {
		return nil, ErrInsufficientOutput
	}
	if amountOut >= reserveOut {
		return nil, ErrInsufficientLiquidity
	}

	impact := priceImpactBps(amountIn, amountOut, reserveIn, reserveOut)
	if p.protection.ImpactGuard && impact > p.protection.MaxImpactBps {
		return nil, ErrExcessivePriceImpact
	}
	if p.protection.SlippageGuard {
		if shortfall := slippageShortfallBps(amountIn, amountOut, reserveIn, reserveOut); shortfall > p.protection.MaxSlippageBps {
			return nil, ErrExcessiveSlippage
		}
	}

	totalFee, err := fixedpoint.MulDiv(amountIn, p.feeRateBps, BpsScale)
	if err != nil {
		return nil, ErrInsufficientLiquidity
	}
	var protocolFee uint64
	if p.protocolRecipient != "" && p.protocolFeeBps > 0 {
		protocolFee, err = fixedpoint.MulDiv(totalFee, p.protocolFeeBps, BpsScale)
		if err != nil {
			return nil, ErrInsufficientLiquidity
		}
	}
	lpFee := totalFee - protocolFee

	if err := p.assets.TransferFrom(ctx, assetIn, caller, amountIn); err != nil {
		return nil, err
	}
	if protocolFee > 0 {
		// Protocol fee leaves the input leg immediately, so LP reserves only
		// grow by amountIn - protocolFee.
		if err := p.assets.Transfer(ctx, assetIn, p.protocolRecipient, protocolFee); err != nil {
			_ = p.assets.Transfer(ctx, assetIn, caller, amountIn)
			return nil, err
		}
	}
	assetOut := p.otherAsset(assetIn)
	if err := p.assets.Transfer(ctx, assetOut, recipient, amountOut); err != nil {
		if protocolFee > 0 {
			_ = p.assets.TransferFrom(ctx, assetIn, p.protocolRecipient, protocolFee)
		}
		_ = p.assets.Transfer(ctx, assetIn, caller, amountIn)
		return nil, err
	}

	newIn := reserveIn + amountIn - protocolFee
	newOut := reserveOut - amountOut
	if assetIn == p.assetA {
		p.applyReserves(newIn, newOut, now.Unix())
	} else {
		p.applyReserves(newOut, newIn, now.Unix())
	}

	p.risk.record(caller, amountIn, now.Unix())
	p.recordSwapStats(amountIn, totalFee)

	p.log.WithFields(map[string]any{
		"account":    caller,
		"asset_in":   assetIn,
		"amount_in":  amountIn,
		"amount_out": amountOut,
		"impact_bps": impact,
	}).Info("swap executed")

	p.events.EmitSwap(ctx, &models.SwapEvent{
		ID:             models.NewEventID(),
		Timestamp:      now,
		Pair:           p.pair(),
		Account:        string(caller),
		Recipient:      string(recipient),
		AssetIn:        string(assetIn),
		AssetOut:       string(assetOut),
		AmountIn:       amountIn,
		AmountOut:      amountOut,
		LPFee:          lpFee,
		ProtocolFee:    protocolFee,
		PriceImpactBps: impact,
		ReserveA:       p.reserveA,
		ReserveB:       p.reserveB,
	})
	if protocolFee > 0 {
		p.events.EmitAdmin(ctx, &models.AdminEvent{
			ID:        models.NewEventID(),
			Timestamp: now,
			Type:      "fees_collected",
			Account:   string(p.protocolRecipient),
			Details: map[string]any{
				"asset":        string(assetIn),
				"protocol_fee": protocolFee,
				"lp_fee":       lpFee,
			},
		})
	}

	return &SwapResult{
		AmountOut:      amountOut,
		LPFee:          lpFee,
		ProtocolFee:    protocolFee,
		PriceImpactBps: impact,
	}, nil
}

func (p *Pool) otherAsset(assetIn Asset) Asset {
	if assetIn == p.assetA {
		return p.assetB
	}
	return p.assetA
}
