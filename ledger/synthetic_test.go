package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// SUM LAW
// =============================================================================

func TestGenerator_SumLaw_HoldsForAnySeed(t *testing.T) {
	// GIVEN: histories generated from many different seeds
	// WHEN: folding each history with the engine's rounding rule
	// THEN: the computed balance equals the signed sum exactly, every time

	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

	for seed := int64(0); seed < 100; seed++ {
		rows := NewSeededGenerator(seed).History(now)

		expected := decimal.Zero
		for _, tx := range rows {
			switch tx.Type {
			case TxDeposit:
				expected = RoundBalance(expected.Add(tx.Amount))
			case TxWithdrawal:
				expected = RoundBalance(expected.Sub(tx.Amount))
			default:
				t.Fatalf("seed %d: unexpected type %s in opening history", seed, tx.Type)
			}
		}

		assert.True(t, SumSigned(rows).Equal(expected),
			"seed %d: SumSigned %s != manual fold %s", seed, SumSigned(rows), expected)
	}
}

// =============================================================================
// SHAPE
// =============================================================================

func TestGenerator_HistoryShape(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

	for seed := int64(0); seed < 50; seed++ {
		rows := NewSeededGenerator(seed).History(now)

		// Count stays inside the configured bounds.
		require.GreaterOrEqual(t, len(rows), minHistoryLen, "seed %d", seed)
		require.LessOrEqual(t, len(rows), maxHistoryLen, "seed %d", seed)

		// The opening row is a deposit from the round-value menu.
		opening := rows[0]
		assert.Equal(t, TxDeposit, opening.Type, "seed %d", seed)
		assert.True(t, opening.Amount.Mod(decimal.NewFromInt(openingDepositStep)).IsZero(),
			"seed %d: opening deposit %s not a multiple of %d", seed, opening.Amount, openingDepositStep)
		assert.True(t, opening.Amount.GreaterThanOrEqual(decimal.NewFromInt(openingDepositStep)), "seed %d", seed)
		assert.True(t, opening.Amount.LessThanOrEqual(decimal.NewFromInt(openingDepositStep*openingDepositSteps)), "seed %d", seed)

		for i, tx := range rows {
			assert.True(t, tx.Type == TxDeposit || tx.Type == TxWithdrawal,
				"seed %d row %d: opening histories contain only deposits and withdrawals", seed, i)
			assert.True(t, tx.Amount.IsPositive(), "seed %d row %d: magnitude must be positive", seed, i)
			assert.Contains(t, descriptions, tx.Description, "seed %d row %d", seed, i)
			assert.True(t, tx.CreatedAt.Before(now), "seed %d row %d: history predates creation", seed, i)
			if i > 0 {
				assert.True(t, tx.CreatedAt.After(rows[i-1].CreatedAt),
					"seed %d row %d: timestamps must increase", seed, i)
			}
		}
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	// Same seed, same history: what the tests above rely on.
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

	a := NewSeededGenerator(7).History(now)
	b := NewSeededGenerator(7).History(now)
	assert.Equal(t, a, b)
}

func TestGenerator_AccountNumber(t *testing.T) {
	g := NewSeededGenerator(1)
	for i := 0; i < 20; i++ {
		number := g.AccountNumber()
		assert.Len(t, number, 10, "display numbers are always 10 digits")
	}
}
