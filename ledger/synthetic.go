/*
synthetic.go - Opening-history generation for new accounts

PURPOSE:
  A brand-new account is seeded with a plausible-looking transaction
  history instead of an empty one. The generator produces the rows; the
  opening balance is then COMPUTED as their signed sum, so the
  balance/history invariant holds by construction for every seed.

POLICY:
  Sum-derived balance. The final balance is never chosen up front and no
  adjustment row is appended to hit a target; the total simply falls out
  of the generated deposits and withdrawals. It may be negative or large,
  and that is fine: only sum-consistency is guaranteed.

SHAPE OF A HISTORY:
  - one opening deposit from a fixed menu of round values (1000..10000,
    steps of 1000)
  - 7 to 19 further rows, deposit or withdrawal with equal probability,
    magnitudes with cent precision inside a bounded range
  - descriptions drawn uniformly from a fixed catalog
  - timestamps spaced backwards from the creation instant so the history
    reads chronologically
*/
package ledger

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TUNING CONSTANTS
// =============================================================================

const (
	minHistoryLen = 8  // transaction count lower bound, inclusive
	maxHistoryLen = 20 // transaction count upper bound, inclusive

	openingDepositStep  = 1000 // opening deposit menu: step * 1..steps
	openingDepositSteps = 10

	minMovementCents = 500   // 5.00, smallest generated movement
	maxMovementCents = 75000 // 750.00, largest generated movement

	accountNumberMin = 1_000_000_000 // 10-digit display numbers
	accountNumberMax = 9_999_999_999
)

// descriptions is the catalog opening histories draw from.
var descriptions = []string{
	"Grocery Shopping",
	"Utility Bill Payment",
	"Rent Payment",
	"Received Transfer",
	"Streaming Subscription Fee",
	"Online Purchase",
	"Gym Membership Fee",
	"Sent Transfer",
	"Tax Refund",
	"Internet Sale",
	"Car Insurance Payment",
	"Credit Card Payment",
	"Freelance Income",
	"Loan Repayment",
	"School Tuition Payment",
	"Salary Deposit",
	"Internet Bill Payment",
	"Restaurant Dining",
	"Savings Account Transfer",
	"Medical Bill Payment",
	"Life Insurance Premium",
	"Investment in Funds",
	"Charitable Donation",
}

// =============================================================================
// GENERATOR
// =============================================================================

// Generator produces synthetic opening histories and display account
// numbers. Safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator returns a time-seeded generator.
func NewGenerator() *Generator {
	return NewSeededGenerator(time.Now().UnixNano())
}

// NewSeededGenerator returns a deterministic generator for tests.
func NewSeededGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// AccountNumber returns a fresh 10-digit display number.
func (g *Generator) AccountNumber() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fmt.Sprintf("%d", accountNumberMin+g.rng.Int63n(accountNumberMax-accountNumberMin+1))
}

// History generates the opening rows for an account created at now.
// AccountID is left blank; the facade fills it in once storage has
// assigned one.
func (g *Generator) History(now time.Time) []Transaction {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := minHistoryLen + g.rng.Intn(maxHistoryLen-minHistoryLen+1)

	// Backdate the first row so n steps land just before now.
	at := now.Add(-time.Duration(n) * 24 * time.Hour)

	rows := make([]Transaction, 0, n)
	rows = append(rows, Transaction{
		Amount:      g.openingDeposit(),
		Type:        TxDeposit,
		CreatedAt:   at,
		Description: descriptions[g.rng.Intn(len(descriptions))],
	})

	for i := 1; i < n; i++ {
		// Spacing tops out below a day, so n-1 steps can never pass the
		// n-day backdate and every row predates the creation instant.
		at = at.Add(time.Duration(1+g.rng.Intn(23)) * time.Hour)
		txType := TxDeposit
		if g.rng.Intn(2) == 0 {
			txType = TxWithdrawal
		}
		rows = append(rows, Transaction{
			Amount:      g.movement(),
			Type:        txType,
			CreatedAt:   at,
			Description: descriptions[g.rng.Intn(len(descriptions))],
		})
	}
	return rows
}

func (g *Generator) openingDeposit() decimal.Decimal {
	steps := int64(1 + g.rng.Intn(openingDepositSteps))
	return decimal.NewFromInt(steps * openingDepositStep)
}

func (g *Generator) movement() decimal.Decimal {
	cents := minMovementCents + g.rng.Int63n(maxMovementCents-minMovementCents+1)
	return decimal.New(cents, -2)
}
