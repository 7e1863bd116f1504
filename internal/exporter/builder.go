// Package exporter implements the export path: aggregating stored records
// into balanced journals, resolving account mappings, submitting to the
// ledger provider, and persisting provenance.
package exporter

import (
	"fmt"
	"sort"

	"github.com/sellerledger-sync/internal/domain/journal"
	"github.com/sellerledger-sync/internal/domain/record"
	"github.com/sellerledger-sync/internal/domain/shared"
)

// Builder aggregates transaction records into balanced journals. All
// arithmetic is integer cents; nothing here touches the network or the store.
type Builder struct{}

// NewBuilder creates a journal builder
func NewBuilder() *Builder {
	return &Builder{}
}

// categoryTotals accumulates the six category sums for one journal
type categoryTotals struct {
	revenue        int64 // sale_price + shipping_charged - refunds - discounts - chargebacks
	shippingIncome int64
	fees           int64
	refunds        int64 // refunds + discounts + chargebacks
	shippingCost   int64
	tax            int64
}

func (t *categoryTotals) add(rec *record.Record) {
	t.revenue += rec.SalePriceCents + rec.ShippingChargedCents - rec.RefundsCents - rec.DiscountsCents - rec.ChargebacksCents
	t.shippingIncome += rec.ShippingChargedCents
	t.fees += rec.PlatformFeesCents
	t.refunds += rec.RefundsCents + rec.DiscountsCents + rec.ChargebacksCents
	t.shippingCost += rec.ShippingCostCents
	t.tax += rec.TaxCollectedCents
}

// BuildSummarized groups sale records by (day, marketplace) and emits one
// balanced journal per group. Expense records are not part of the sales
// journal and are skipped.
func (b *Builder) BuildSummarized(records []*record.Record) []*journal.Journal {
	type groupKey struct {
		day         string
		marketplace string
	}

	groups := make(map[groupKey]*categoryTotals)
	for _, rec := range records {
		if rec.Type != shared.RecordTypeSale {
			continue
		}
		key := groupKey{day: rec.Day(), marketplace: rec.Marketplace}
		totals, ok := groups[key]
		if !ok {
			totals = &categoryTotals{}
			groups[key] = totals
		}
		totals.add(rec)
	}

	keys := make([]groupKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].day != keys[j].day {
			return keys[i].day < keys[j].day
		}
		return keys[i].marketplace < keys[j].marketplace
	})

	journals := make([]*journal.Journal, 0, len(keys))
	for _, key := range keys {
		memo := fmt.Sprintf("Daily sales summary %s", key.day)
		if key.marketplace != "" {
			memo += " - " + key.marketplace
		}
		j := buildJournal(key.day, key.marketplace, "", memo, groups[key])
		if len(j.Lines) > 0 {
			journals = append(journals, j)
		}
	}
	return journals
}

// BuildPerOrder emits one balanced journal per sale record, preserving the
// order reference for traceability. Category logic is identical to
// summarized mode.
func (b *Builder) BuildPerOrder(records []*record.Record) []*journal.Journal {
	journals := make([]*journal.Journal, 0, len(records))
	for _, rec := range records {
		if rec.Type != shared.RecordTypeSale {
			continue
		}
		totals := &categoryTotals{}
		totals.add(rec)

		orderRef := rec.OrderRef
		if orderRef == "" {
			orderRef = rec.ID.String()
		}
		memo := fmt.Sprintf("Order %s", orderRef)
		if rec.Marketplace != "" {
			memo += " - " + rec.Marketplace
		}

		j := buildJournal(rec.Day(), rec.Marketplace, orderRef, memo, totals)
		if len(j.Lines) > 0 {
			journals = append(journals, j)
		}
	}
	return journals
}

// buildJournal emits one credit line each for revenue, shipping income, and
// sales tax, one debit line each for fees, refunds, and shipping cost, then
// a single clearing line sized to force debits == credits. Zero lines are
// dropped before the balance line is computed. A negative category sum flips
// to the opposite side so line amounts stay non-negative.
func buildJournal(date, marketplace, orderRef, memo string, totals *categoryTotals) *journal.Journal {
	j := &journal.Journal{
		Date:        date,
		Marketplace: marketplace,
		OrderRef:    orderRef,
		Memo:        memo,
	}

	j.Lines = append(j.Lines,
		categoryLine(shared.AccountTypeRevenue, totals.revenue, shared.DirectionCredit, "Sales revenue"),
		categoryLine(shared.AccountTypeShippingIncome, totals.shippingIncome, shared.DirectionCredit, "Shipping charged to buyers"),
		categoryLine(shared.AccountTypeSalesTaxLiability, totals.tax, shared.DirectionCredit, "Sales tax collected"),
		categoryLine(shared.AccountTypeFeesExpense, totals.fees, shared.DirectionDebit, "Platform fees"),
		categoryLine(shared.AccountTypeRefundsContra, totals.refunds, shared.DirectionDebit, "Refunds, discounts and chargebacks"),
		categoryLine(shared.AccountTypeShippingCost, totals.shippingCost, shared.DirectionDebit, "Shipping labels"),
	)

	j.DropZeroLines()
	j.AddBalancingLine(journal.LogicalAccount(shared.AccountTypeClearing), "Marketplace clearing")
	return j
}

func categoryLine(account shared.AccountType, cents int64, direction shared.Direction, memo string) journal.Line {
	if cents < 0 {
		cents = -cents
		direction = direction.Opposite()
	}
	return journal.Line{
		Account:     journal.LogicalAccount(account),
		AmountCents: cents,
		Direction:   direction,
		Memo:        memo,
	}
}
