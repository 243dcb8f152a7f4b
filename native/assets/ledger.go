package assets

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"sync"

	"willvault/crypto"
)

// InMemoryLedger is a reference Transferer used by tests and the demo
// daemon. It tracks credited balances per (token, recipient) and per
// (token, tokenID) ownership so end-to-end scenarios can assert on
// distribution without a real external chain. Production hosts supply their
// own Transferer backed by the actual custody rail.
type InMemoryLedger struct {
	mu        sync.Mutex
	fungible  map[string]map[string]*big.Int // token -> recipient -> balance
	unique    map[string]map[string]string   // token -> tokenID -> owner
	failToken map[string]struct{}            // tokens configured to always fail, for TRANSFER_FAILED tests
}

// NewInMemoryLedger constructs an empty ledger.
func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{
		fungible:  make(map[string]map[string]*big.Int),
		unique:    make(map[string]map[string]string),
		failToken: make(map[string]struct{}),
	}
}

// FailToken marks token so every subsequent Transfer for it returns an
// error, exercising the registry's per-deposit rollback path.
func (l *InMemoryLedger) FailToken(token string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failToken[token] = struct{}{}
}

// Transfer implements Transferer.
func (l *InMemoryLedger) Transfer(_ context.Context, class Class, token string, recipient crypto.Principal, amount, tokenID *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := ledgerTokenKey(class, token)
	if _, fail := l.failToken[key]; fail {
		return fmt.Errorf("assets: simulated transfer failure for token %s", key)
	}
	switch class {
	case ClassUnique:
		if l.unique[key] == nil {
			l.unique[key] = make(map[string]string)
		}
		l.unique[key][tokenID.String()] = recipient.String()
	default:
		if l.fungible[key] == nil {
			l.fungible[key] = make(map[string]*big.Int)
		}
		owner := recipient.String()
		if owner == "" {
			owner = hex.EncodeToString(recipient.Bytes())
		}
		prev, ok := l.fungible[key][owner]
		if !ok {
			prev = big.NewInt(0)
		}
		l.fungible[key][owner] = new(big.Int).Add(prev, amount)
	}
	return nil
}

// BalanceOf returns the credited balance for a fungible/native/semi-fungible
// recipient. Intended for tests.
func (l *InMemoryLedger) BalanceOf(class Class, token string, recipient crypto.Principal) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := ledgerTokenKey(class, token)
	owner := recipient.String()
	if owner == "" {
		owner = hex.EncodeToString(recipient.Bytes())
	}
	bal, ok := l.fungible[key][owner]
	if !ok {
		return big.NewInt(0)
	}
	return new(big.Int).Set(bal)
}

// OwnerOf returns the recorded owner principal string for a unique item.
func (l *InMemoryLedger) OwnerOf(token string, tokenID *big.Int) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := ledgerTokenKey(ClassUnique, token)
	return l.unique[key][tokenID.String()]
}

func ledgerTokenKey(class Class, token string) string {
	if class == ClassNative {
		return "native"
	}
	return token
}
