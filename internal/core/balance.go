package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// BalancePolicy decides which transactions count toward a balance.
type BalancePolicy string

const (
	// BalanceAllTransactions counts every transaction regardless of status.
	BalanceAllTransactions BalancePolicy = "all"
	// BalancePaidOnly counts only PAID transactions.
	BalancePaidOnly BalancePolicy = "paid"
)

func ParseBalancePolicy(s string) (BalancePolicy, error) {
	switch BalancePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", BalanceAllTransactions:
		return BalanceAllTransactions, nil
	case BalancePaidOnly:
		return BalancePaidOnly, nil
	}
	return "", fmt.Errorf("unknown balance policy %q", s)
}

func (p BalancePolicy) counts(t Transaction) bool {
	if p == BalancePaidOnly {
		return t.Status == StatusPaid
	}
	return true
}

// ComputeBalance adds income and subtracts expense on top of initial.
func ComputeBalance(initial decimal.Decimal, txs []Transaction, policy BalancePolicy) decimal.Decimal {
	balance := initial
	for _, t := range txs {
		if !policy.counts(t) {
			continue
		}
		switch t.Type {
		case Income:
			balance = balance.Add(t.Amount)
		case Expense:
			balance = balance.Sub(t.Amount)
		}
	}
	return balance
}

// BalanceView is the dashboard balance with overdraft headroom.
type BalanceView struct {
	Balance        decimal.Decimal
	InitialBalance decimal.Decimal
	OverdraftLimit decimal.Decimal
	Available      decimal.Decimal
	OverLimit      bool
}

func NewBalanceView(u User, txs []Transaction, policy BalancePolicy) BalanceView {
	bal := ComputeBalance(u.InitialBalance, txs, policy)
	avail := bal.Add(u.OverdraftLimit)
	return BalanceView{
		Balance:        bal,
		InitialBalance: u.InitialBalance,
		OverdraftLimit: u.OverdraftLimit,
		Available:      avail,
		OverLimit:      avail.IsNegative(),
	}
}
