package pool

import (
	"context"

	"github.com/openamm/pool-engine/internal/models"
)

// requireRole is the capability check behind every administrative operation.
func (p *Pool) requireRole(role Role, caller Account) error {
	if p.access == nil || !p.access.HasRole(role, caller) {
		return ErrUnauthorized
	}
	return nil
}

func (p *Pool) emitAdmin(ctx context.Context, typ string, caller Account, details map[string]any) {
	p.events.EmitAdmin(ctx, &models.AdminEvent{
		ID:        models.NewEventID(),
		Timestamp: p.now(),
		Type:      typ,
		Account:   string(caller),
		Details:   details,
	})
}

// SetFeeRate changes the swap fee. Misconfiguration is rejected here, never
// deferred to swap time.
func (p *Pool) SetFeeRate(ctx context.Context, caller Account, feeRateBps uint64) error {
	ctx, err := p.enter(ctx)
	if err != nil {
		return err
	}
	defer p.exit()

	if err := p.requireRole(RoleFeeManager, caller); err != nil {
		return err
	}
	if !p.initialized {
		return ErrNotInitialized
	}
	if feeRateBps > MaxFeeRateBps {
		return ErrFeeRateTooHigh
	}
	p.feeRateBps = feeRateBps
	p.emitAdmin(ctx, "fee_rate_updated", caller, map[string]any{"fee_bps": feeRateBps})
	return nil
}

// SetProtocolFee sets the share of the swap fee diverted to recipient. A
// zero rate disables the split; a non-zero rate requires a recipient.
func (p *Pool) SetProtocolFee(ctx context.Context, caller Account, rateBps uint64, recipient Account) error {
	ctx, err := p.enter(ctx)
	if err != nil {
		return err
	}
	defer p.exit()

	if err := p.requireRole(RoleFeeManager, caller); err != nil {
		return err
	}
	if rateBps > BpsScale {
		return ErrFeeRateTooHigh
	}
	if rateBps > 0 && recipient == "" {
		return ErrZeroAddress
	}
	p.protocolFeeBps = rateBps
	p.protocolRecipient = recipient
	p.emitAdmin(ctx, "protocol_fee_updated", caller, map[string]any{
		"rate_bps":  rateBps,
		"recipient": string(recipient),
	})
	return nil
}

// SetTradingLimits replaces the RiskController ceilings. Zero disables a
// ceiling.
func (p *Pool) SetTradingLimits(ctx context.Context, caller Account, limits RiskLimits) error {
	ctx, err := p.enter(ctx)
	if err != nil {
		return err
	}
	defer p.exit()

	if err := p.requireRole(RoleAdmin, caller); err != nil {
		return err
	}
	p.risk.limits = limits
	p.emitAdmin(ctx, "limits_updated", caller, map[string]any{
		"max_trade_amount":   limits.MaxTradeAmount,
		"daily_volume_limit": limits.DailyVolumeLimit,
		"user_daily_limit":   limits.UserDailyLimit,
	})
	return nil
}

// SetProtectionSettings replaces both toggleable swap gates at once so their
// thresholds are always chosen jointly.
func (p *Pool) SetProtectionSettings(ctx context.Context, caller Account, settings ProtectionSettings) error {
	ctx, err := p.enter(ctx)
	if err != nil {
		return err
	}
	defer p.exit()

	if err := p.requireRole(RoleAdmin, caller); err != nil {
		return err
	}
	if settings.MaxSlippageBps > BpsScale || settings.MaxImpactBps > BpsScale {
		return ErrFeeRateTooHigh
	}
	p.protection = settings
	p.emitAdmin(ctx, "protection_updated", caller, map[string]any{
		"slippage_guard":   settings.SlippageGuard,
		"max_slippage_bps": settings.MaxSlippageBps,
		"impact_guard":     settings.ImpactGuard,
		"max_impact_bps":   settings.MaxImpactBps,
	})
	return nil
}

// ToggleEmergencyMode flips the emergency gate. Deposits and swaps are
// blocked while it is on; withdrawals stay available with the exit fee.
func (p *Pool) ToggleEmergencyMode(ctx context.Context, caller Account) (bool, error) {
	ctx, err := p.enter(ctx)
	if err != nil {
		return false, err
	}
	defer p.exit()

	if err := p.requireRole(RoleEmergency, caller); err != nil {
		return false, err
	}
	p.emergencyMode = !p.emergencyMode
	p.log.WithField("emergency_mode", p.emergencyMode).Warn("emergency mode toggled")
	p.emitAdmin(ctx, "emergency_toggled", caller, map[string]any{"active": p.emergencyMode})
	return p.emergencyMode, nil
}

// Pause blocks deposits and swaps. Reversible; never a teardown.
func (p *Pool) Pause(ctx context.Context, caller Account) error {
	ctx, err := p.enter(ctx)
	if err != nil {
		return err
	}
	defer p.exit()

	if err := p.requireRole(RoleOperator, caller); err != nil {
		return err
	}
	p.paused = true
	p.emitAdmin(ctx, "paused", caller, nil)
	return nil
}

// Unpause re-enables deposits and swaps.
func (p *Pool) Unpause(ctx context.Context, caller Account) error {
	ctx, err := p.enter(ctx)
	if err != nil {
		return err
	}
	defer p.exit()

	if err := p.requireRole(RoleOperator, caller); err != nil {
		return err
	}
	p.paused = false
	p.emitAdmin(ctx, "unpaused", caller, nil)
	return nil
}

// GrantRole and RevokeRole manage the role-membership map. Admin only.
func (p *Pool) GrantRole(ctx context.Context, caller Account, role Role, account Account) error {
	ctx, err := p.enter(ctx)
	if err != nil {
		return err
	}
	defer p.exit()

	if err := p.requireRole(RoleAdmin, caller); err != nil {
		return err
	}
	if account == "" {
		return ErrZeroAddress
	}
	p.access.Grant(role, account)
	p.emitAdmin(ctx, "role_granted", caller, map[string]any{"role": string(role), "account": string(account)})
	return nil
}

func (p *Pool) RevokeRole(ctx context.Context, caller Account, role Role, account Account) error {
	ctx, err := p.enter(ctx)
	if err != nil {
		return err
	}
	defer p.exit()

	if err := p.requireRole(RoleAdmin, caller); err != nil {
		return err
	}
	p.access.Revoke(role, account)
	p.emitAdmin(ctx, "role_revoked", caller, map[string]any{"role": string(role), "account": string(account)})
	return nil
}

// RiskUsage reports the global and per-account volume consumed today.
func (p *Pool) RiskUsage(account Account) (global, user uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.risk.usage(account, p.now().Unix())
}
