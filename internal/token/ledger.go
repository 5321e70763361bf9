// Package token provides in-process implementations of the pool's asset
// transfer and share-token collaborators. Balances live in memory; moves are
// all-or-nothing under one lock.
package token

import (
	"context"
	"errors"
	"math"
	"sync"

	"github.com/openamm/pool-engine/internal/pool"
)

var (
	ErrInsufficientFunds = errors.New("token: insufficient funds")
	ErrInsufficientShare = errors.New("token: insufficient share balance")
	ErrBalanceOverflow   = errors.New("token: balance overflow")
)

// Ledger is a multi-asset balance book with the pool as implicit custodian.
type Ledger struct {
	mu       sync.Mutex
	custody  pool.Account
	balances map[pool.Asset]map[pool.Account]uint64
}

func NewLedger(custody pool.Account) *Ledger {
	return &Ledger{
		custody:  custody,
		balances: make(map[pool.Asset]map[pool.Account]uint64),
	}
}

// Mint credits an account out of thin air. Bootstrap and test helper; the
// pool itself never calls it.
func (l *Ledger) Mint(asset pool.Asset, account pool.Account, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.credit(asset, account, amount)
}

func (l *Ledger) TransferFrom(_ context.Context, asset pool.Asset, from pool.Account, amount uint64) error {
	return l.move(asset, from, l.custody, amount)
}

func (l *Ledger) Transfer(_ context.Context, asset pool.Asset, to pool.Account, amount uint64) error {
	return l.move(asset, l.custody, to, amount)
}

func (l *Ledger) BalanceOf(asset pool.Asset, account pool.Account) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[asset][account]
}

// CustodyBalance reports the pool's custodied balance of an asset; tests use
// it to check reserves against actual holdings.
func (l *Ledger) CustodyBalance(asset pool.Asset) uint64 {
	return l.BalanceOf(asset, l.custody)
}

func (l *Ledger) move(asset pool.Asset, from, to pool.Account, amount uint64) error {
	if amount == 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[asset][from] < amount {
		return ErrInsufficientFunds
	}
	// Credit first so an overflowing destination rejects the whole move.
	if err := l.credit(asset, to, amount); err != nil {
		return err
	}
	l.balances[asset][from] -= amount
	return nil
}

func (l *Ledger) credit(asset pool.Asset, account pool.Account, amount uint64) error {
	if l.balances[asset] == nil {
		l.balances[asset] = make(map[pool.Account]uint64)
	}
	if l.balances[asset][account] > math.MaxUint64-amount {
		return ErrBalanceOverflow
	}
	l.balances[asset][account] += amount
	return nil
}

// Shares is the liquidity-share token. Supply only moves through Mint and
// Burn; the pool reads TotalSupply for all proportional math.
type Shares struct {
	mu       sync.Mutex
	balances map[pool.Account]uint64
	total    uint64
}

func NewShares() *Shares {
	return &Shares{balances: make(map[pool.Account]uint64)}
}

func (s *Shares) Mint(_ context.Context, to pool.Account, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.total > math.MaxUint64-amount {
		return ErrBalanceOverflow
	}
	s.balances[to] += amount
	s.total += amount
	return nil
}

func (s *Shares) Burn(_ context.Context, from pool.Account, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.balances[from] < amount {
		return ErrInsufficientShare
	}
	s.balances[from] -= amount
	s.total -= amount
	return nil
}

func (s *Shares) TotalSupply(_ context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total, nil
}

func (s *Shares) BalanceOf(_ context.Context, account pool.Account) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[account], nil
}
