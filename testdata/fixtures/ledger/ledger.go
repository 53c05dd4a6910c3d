// Package ledger tracks account balances.
package ledger

import (
	"fmt"

	"example.com/ledger/store"
)

// Account holds a named balance.
type Account struct {
	Name    string
	Balance int64
}

// Book is the interface for posting entries.
type Book interface {
	Post(entry Entry) error
}

// Entry is one signed movement against an account.
type Entry struct {
	Account string
	Amount  int64
}

// Ledger applies entries to accounts.
type Ledger struct {
	accounts map[string]*Account
	backend  store.Backend
}

// NewLedger creates an empty Ledger backed by the given store.
func NewLedger(backend store.Backend) *Ledger {
	return &Ledger{
		accounts: make(map[string]*Account),
		backend:  backend,
	}
}

// Post applies one entry to its account, creating the account on first use.
func (l *Ledger) Post(entry Entry) error {
	if entry.Account == "" {
		return fmt.Errorf("post: empty account name")
	}
	acct, ok := l.accounts[entry.Account]
	if !ok {
		acct = &Account{Name: entry.Account}
		l.accounts[entry.Account] = acct
	}
	acct.Balance += entry.Amount
	return l.backend.Write(entry.Account, acct.Balance)
}

func zeroBalance(name string) *Account {
	return &Account{Name: name}
}
