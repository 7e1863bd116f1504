package record

import (
	"time"

	"github.com/google/uuid"
	"github.com/sellerledger-sync/internal/domain/shared"
)

// Record represents one imported financial event (a sale or an expense).
// All currency fields are integer cents; Record is immutable once stored.
type Record struct {
	ID          uuid.UUID         `json:"id"`
	OrgID       uuid.UUID         `json:"org_id"`
	Type        shared.RecordType `json:"type"`
	OccurredAt  int64             `json:"occurred_at"` // Epoch milliseconds
	AmountCents int64             `json:"amount_cents"`
	Category    string            `json:"category"`
	Vendor      string            `json:"vendor,omitempty"`
	Marketplace string            `json:"marketplace,omitempty"`
	OrderRef    string            `json:"order_ref,omitempty"`

	// Sale component amounts, integer cents. Zero for expense rows.
	SalePriceCents       int64 `json:"sale_price_cents"`
	ShippingChargedCents int64 `json:"shipping_charged_cents"`
	PlatformFeesCents    int64 `json:"platform_fees_cents"`
	RefundsCents         int64 `json:"refunds_cents"`
	DiscountsCents       int64 `json:"discounts_cents"`
	ChargebacksCents     int64 `json:"chargebacks_cents"`
	ShippingCostCents    int64 `json:"shipping_cost_cents"`
	TaxCollectedCents    int64 `json:"tax_collected_cents"`

	// Mileage-based expense rows carry distance and a per-mile rate instead
	// of a pre-computed amount.
	Miles            float64 `json:"miles,omitempty"`
	MileageRateCents int64   `json:"mileage_rate_cents,omitempty"`

	Source      string    `json:"source"`
	ContentHash string    `json:"content_hash"`
	CreatedAt   time.Time `json:"created_at"`
}

// OccurredAtTime converts the epoch-millisecond timestamp to UTC time
func (r *Record) OccurredAtTime() time.Time {
	return time.UnixMilli(r.OccurredAt).UTC()
}

// Day returns the record's calendar day in YYYY-MM-DD form, the grouping key
// used by the summarized journal builder
func (r *Record) Day() string {
	return r.OccurredAtTime().Format("2006-01-02")
}
