package journal

import (
	"github.com/sellerledger-sync/internal/domain/shared"
)

// AccountRef identifies the account a line posts to. It is a tagged union:
// either a logical account-type key still to be resolved through the org's
// mappings, or an external provider account id that must pass through the
// mapper unchanged. Exactly one side is set.
type AccountRef struct {
	Logical  shared.AccountType `json:"logical,omitempty" bson:"logical,omitempty"`
	External string             `json:"external,omitempty" bson:"external,omitempty"`
}

// LogicalAccount builds a reference to a not-yet-resolved account bucket
func LogicalAccount(t shared.AccountType) AccountRef {
	return AccountRef{Logical: t}
}

// ExternalAccount builds a reference to an already-resolved provider account
func ExternalAccount(id string) AccountRef {
	return AccountRef{External: id}
}

// Resolved reports whether the reference already carries an external id
func (r AccountRef) Resolved() bool {
	return r.External != ""
}

// Line is one posting: an account, a non-negative amount in integer cents,
// and a direction.
type Line struct {
	Account     AccountRef       `json:"account" bson:"account"`
	AmountCents int64            `json:"amount_cents" bson:"amount_cents"`
	Direction   shared.Direction `json:"direction" bson:"direction"`
	Memo        string           `json:"memo,omitempty" bson:"memo,omitempty"`
}

// Journal is an ordered set of lines for one date and marketplace (summarized
// mode) or one order (per-order mode). A journal is only valid when total
// debits equal total credits exactly, in integer cents.
type Journal struct {
	Date        string `json:"date" bson:"date"` // YYYY-MM-DD
	Marketplace string `json:"marketplace,omitempty" bson:"marketplace,omitempty"`
	OrderRef    string `json:"order_ref,omitempty" bson:"order_ref,omitempty"`
	Memo        string `json:"memo,omitempty" bson:"memo,omitempty"`
	Lines       []Line `json:"lines" bson:"lines"`
}

// TotalDebits sums the debit lines in cents
func (j *Journal) TotalDebits() int64 {
	var total int64
	for _, line := range j.Lines {
		if line.Direction == shared.DirectionDebit {
			total += line.AmountCents
		}
	}
	return total
}

// TotalCredits sums the credit lines in cents
func (j *Journal) TotalCredits() int64 {
	var total int64
	for _, line := range j.Lines {
		if line.Direction == shared.DirectionCredit {
			total += line.AmountCents
		}
	}
	return total
}

// Balanced reports whether debits equal credits exactly
func (j *Journal) Balanced() bool {
	return j.TotalDebits() == j.TotalCredits()
}

// DropZeroLines removes zero-amount lines in place, preserving order.
// Zero lines are dropped before the balance check.
func (j *Journal) DropZeroLines() {
	kept := j.Lines[:0]
	for _, line := range j.Lines {
		if line.AmountCents != 0 {
			kept = append(kept, line)
		}
	}
	j.Lines = kept
}

// AddBalancingLine appends a clearing line sized to force debits == credits.
// The clearing amount is the absolute residual between the two sides, placed
// on whichever side brings the journal to balance. A journal already in
// balance gets no line.
func (j *Journal) AddBalancingLine(clearing AccountRef, memo string) {
	debits := j.TotalDebits()
	credits := j.TotalCredits()
	if debits == credits {
		return
	}

	line := Line{Account: clearing, Memo: memo}
	if credits > debits {
		line.Direction = shared.DirectionDebit
		line.AmountCents = credits - debits
	} else {
		line.Direction = shared.DirectionCredit
		line.AmountCents = debits - credits
	}
	j.Lines = append(j.Lines, line)
}

// Reverse returns the exact line-wise inverse of the journal, dated with the
// given day: same accounts and amounts, every direction flipped.
func (j *Journal) Reverse(date string, memo string) *Journal {
	reversed := &Journal{
		Date:        date,
		Marketplace: j.Marketplace,
		OrderRef:    j.OrderRef,
		Memo:        memo,
		Lines:       make([]Line, len(j.Lines)),
	}
	for i, line := range j.Lines {
		reversed.Lines[i] = Line{
			Account:     line.Account,
			AmountCents: line.AmountCents,
			Direction:   line.Direction.Opposite(),
			Memo:        line.Memo,
		}
	}
	return reversed
}

// LogicalKeys returns the distinct logical account types referenced by the
// journal's lines, in first-seen order. Already-resolved lines contribute
// nothing.
func (j *Journal) LogicalKeys() []shared.AccountType {
	seen := make(map[shared.AccountType]bool)
	var keys []shared.AccountType
	for _, line := range j.Lines {
		if line.Account.Resolved() || line.Account.Logical == "" {
			continue
		}
		if !seen[line.Account.Logical] {
			seen[line.Account.Logical] = true
			keys = append(keys, line.Account.Logical)
		}
	}
	return keys
}
