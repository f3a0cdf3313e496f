package contract

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrInsufficientBalance is returned by a ledger when the sender balance is too low
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrRecipientRejected is returned by a ledger when the recipient refuses funds
	ErrRecipientRejected = errors.New("recipient rejected transfer")
)

// Ledger holds native-currency balances. Snapshot and RevertToSnapshot give
// calls the all-or-nothing behaviour of a reverted transaction.
type Ledger interface {
	BalanceOf(addr common.Address) *big.Int
	Transfer(from, to common.Address, amount *big.Int) error
	Snapshot() int
	RevertToSnapshot(id int)
	Commit(id int)
}

type balanceChange struct {
	addr common.Address
	prev *big.Int
}

// MemoryLedger is an in-process Ledger.
type MemoryLedger struct {
	mu        sync.Mutex
	balances  map[common.Address]*big.Int
	rejecting map[common.Address]bool
	journal   []balanceChange
	open      int
}

// NewMemoryLedger creates an empty MemoryLedger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances:  make(map[common.Address]*big.Int),
		rejecting: make(map[common.Address]bool),
	}
}

// Credit adds funds to an account. Credits are never journaled: they
// survive the revert of any call open at the time, so the journaled
// balances of addr are raised by the same amount.
func (l *MemoryLedger) Credit(addr common.Address, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.balances[addr] = new(big.Int).Add(l.get(addr), amount)
	for i := range l.journal {
		ch := &l.journal[i]
		if ch.addr != addr {
			continue
		}
		if ch.prev == nil {
			ch.prev = new(big.Int).Set(amount)
		} else {
			ch.prev = new(big.Int).Add(ch.prev, amount)
		}
	}
}

// RejectIncoming makes every transfer to addr fail, like a contract without a receive hook.
func (l *MemoryLedger) RejectIncoming(addr common.Address, reject bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rejecting[addr] = reject
}

// BalanceOf returns a copy of the balance of addr.
func (l *MemoryLedger) BalanceOf(addr common.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(l.get(addr))
}

// Transfer moves amount from one account to another.
func (l *MemoryLedger) Transfer(from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("transfer amount %v: %w", amount, ErrInsufficientBalance)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.rejecting[to] {
		return ErrRecipientRejected
	}
	fromBal := l.get(from)
	if fromBal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if amount.Sign() == 0 || from == to {
		return nil
	}

	l.set(from, new(big.Int).Sub(fromBal, amount))
	l.set(to, new(big.Int).Add(l.get(to), amount))
	return nil
}

// Snapshot marks the current journal position.
func (l *MemoryLedger) Snapshot() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.open++
	return len(l.journal)
}

// RevertToSnapshot undoes every balance change made after the snapshot.
func (l *MemoryLedger) RevertToSnapshot(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := len(l.journal) - 1; i >= id; i-- {
		ch := l.journal[i]
		if ch.prev == nil {
			delete(l.balances, ch.addr)
		} else {
			l.balances[ch.addr] = ch.prev
		}
	}
	l.journal = l.journal[:id]
	l.close()
}

// Commit keeps the changes made since the snapshot.
func (l *MemoryLedger) Commit(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.close()
}

func (l *MemoryLedger) close() {
	if l.open > 0 {
		l.open--
	}
	if l.open == 0 {
		l.journal = nil
	}
}

func (l *MemoryLedger) get(addr common.Address) *big.Int {
	if b, ok := l.balances[addr]; ok {
		return b
	}
	return new(big.Int)
}

func (l *MemoryLedger) set(addr common.Address, bal *big.Int) {
	if l.open > 0 {
		l.journal = append(l.journal, balanceChange{addr: addr, prev: l.balances[addr]})
	}
	l.balances[addr] = bal
}
