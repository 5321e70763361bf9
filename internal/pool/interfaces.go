package pool

import (
	"context"

	"github.com/openamm/pool-engine/internal/models"
)

// Asset is an opaque identifier for a fungible asset leg.
type Asset string

// Account is an opaque identifier for a balance-holding party.
type Account string

// Role names a capability checked before role-gated operations.
type Role string

const (
	// RoleAdmin may change trading limits, protection settings and roles.
	RoleAdmin Role = "admin"
	// RoleFeeManager may change the swap fee and the protocol fee split.
	RoleFeeManager Role = "fee_manager"
	// RoleOperator may pause and unpause trading.
	RoleOperator Role = "operator"
	// RoleEmergency may toggle emergency mode.
	RoleEmergency Role = "emergency"
)

// BurnAccount permanently holds the minimum-liquidity shares locked on the
// first provision. Nothing ever transfers out of it.
const BurnAccount Account = "locked"

// AssetLedger is the fungible-asset transfer capability. The pool is the
// implicit custodian: TransferFrom pulls into custody, Transfer pays out of
// it. Transfers are all-or-nothing: on error no balance has moved.
type AssetLedger interface {
	TransferFrom(ctx context.Context, asset Asset, from Account, amount uint64) error
	Transfer(ctx context.Context, asset Asset, to Account, amount uint64) error
}

// ShareToken is the liquidity-share mint/burn capability. The engine reads
// TotalSupply for all proportional math rather than tracking supply itself.
type ShareToken interface {
	Mint(ctx context.Context, to Account, amount uint64) error
	Burn(ctx context.Context, from Account, amount uint64) error
	TotalSupply(ctx context.Context) (uint64, error)
	BalanceOf(ctx context.Context, account Account) (uint64, error)
}

// AccessControl answers role-membership queries and lets Initialize grant
// the deployer its administrative roles.
type AccessControl interface {
	HasRole(role Role, account Account) bool
	Grant(role Role, account Account)
	Revoke(role Role, account Account)
}

// Emitter receives events after an operation has fully committed. Emission
// is observability only; implementations must not fail the operation.
type Emitter interface {
	EmitSwap(ctx context.Context, ev *models.SwapEvent)
	EmitLiquidity(ctx context.Context, ev *models.LiquidityEvent)
	EmitAdmin(ctx context.Context, ev *models.AdminEvent)
}
