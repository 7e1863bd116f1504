package journal

import (
	"testing"

	"github.com/sellerledger-sync/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestJournal_AddBalancingLine(t *testing.T) {
	t.Run("CreditsExceedDebits", func(t *testing.T) {
		j := &Journal{
			Date: "2024-03-01",
			Lines: []Line{
				{Account: LogicalAccount(shared.AccountTypeRevenue), AmountCents: 11800, Direction: shared.DirectionCredit},
				{Account: LogicalAccount(shared.AccountTypeFeesExpense), AmountCents: 500, Direction: shared.DirectionDebit},
			},
		}

		j.AddBalancingLine(LogicalAccount(shared.AccountTypeClearing), "clearing")

		assert.True(t, j.Balanced())
		last := j.Lines[len(j.Lines)-1]
		assert.Equal(t, shared.DirectionDebit, last.Direction)
		assert.Equal(t, int64(11300), last.AmountCents)
		assert.Equal(t, shared.AccountTypeClearing, last.Account.Logical)
	})

	t.Run("DebitsExceedCredits", func(t *testing.T) {
		j := &Journal{
			Date: "2024-03-01",
			Lines: []Line{
				{Account: LogicalAccount(shared.AccountTypeRefundsContra), AmountCents: 2500, Direction: shared.DirectionDebit},
			},
		}

		j.AddBalancingLine(LogicalAccount(shared.AccountTypeClearing), "clearing")

		assert.True(t, j.Balanced())
		last := j.Lines[len(j.Lines)-1]
		assert.Equal(t, shared.DirectionCredit, last.Direction)
		assert.Equal(t, int64(2500), last.AmountCents)
	})

	t.Run("AlreadyBalanced", func(t *testing.T) {
		j := &Journal{
			Lines: []Line{
				{Account: LogicalAccount(shared.AccountTypeRevenue), AmountCents: 100, Direction: shared.DirectionCredit},
				{Account: LogicalAccount(shared.AccountTypeClearing), AmountCents: 100, Direction: shared.DirectionDebit},
			},
		}

		j.AddBalancingLine(LogicalAccount(shared.AccountTypeClearing), "clearing")

		assert.Len(t, j.Lines, 2)
	})
}

func TestJournal_DropZeroLines(t *testing.T) {
	j := &Journal{
		Lines: []Line{
			{Account: LogicalAccount(shared.AccountTypeRevenue), AmountCents: 100, Direction: shared.DirectionCredit},
			{Account: LogicalAccount(shared.AccountTypeShippingIncome), AmountCents: 0, Direction: shared.DirectionCredit},
			{Account: LogicalAccount(shared.AccountTypeFeesExpense), AmountCents: 30, Direction: shared.DirectionDebit},
		},
	}

	j.DropZeroLines()

	assert.Len(t, j.Lines, 2)
	assert.Equal(t, shared.AccountTypeRevenue, j.Lines[0].Account.Logical)
	assert.Equal(t, shared.AccountTypeFeesExpense, j.Lines[1].Account.Logical)
}

func TestJournal_Reverse(t *testing.T) {
	forward := &Journal{
		Date:        "2024-03-01",
		Marketplace: "etsy",
		Lines: []Line{
			{Account: LogicalAccount(shared.AccountTypeRevenue), AmountCents: 100, Direction: shared.DirectionCredit, Memo: "revenue"},
			{Account: ExternalAccount("85"), AmountCents: 40, Direction: shared.DirectionDebit, Memo: "fees"},
			{Account: LogicalAccount(shared.AccountTypeClearing), AmountCents: 60, Direction: shared.DirectionDebit},
		},
	}

	reversed := forward.Reverse("2024-03-02", "reversal of fwd-1")

	assert.Equal(t, "2024-03-02", reversed.Date)
	assert.Equal(t, "etsy", reversed.Marketplace)
	assert.Equal(t, "reversal of fwd-1", reversed.Memo)
	assert.Len(t, reversed.Lines, len(forward.Lines))
	for i, line := range reversed.Lines {
		assert.Equal(t, forward.Lines[i].Account, line.Account)
		assert.Equal(t, forward.Lines[i].AmountCents, line.AmountCents)
		assert.Equal(t, forward.Lines[i].Direction.Opposite(), line.Direction)
	}
	assert.True(t, reversed.Balanced())
}

func TestJournal_LogicalKeys(t *testing.T) {
	j := &Journal{
		Lines: []Line{
			{Account: LogicalAccount(shared.AccountTypeRevenue), AmountCents: 1, Direction: shared.DirectionCredit},
			{Account: LogicalAccount(shared.AccountTypeRevenue), AmountCents: 2, Direction: shared.DirectionCredit},
			{Account: ExternalAccount("42"), AmountCents: 3, Direction: shared.DirectionDebit},
			{Account: LogicalAccount(shared.AccountTypeClearing), AmountCents: 1, Direction: shared.DirectionDebit},
		},
	}

	keys := j.LogicalKeys()
	assert.Equal(t, []shared.AccountType{shared.AccountTypeRevenue, shared.AccountTypeClearing}, keys)
}
