package shared

// Provider identifies an external general-ledger provider
type Provider string

const (
	ProviderQuickBooks Provider = "quickbooks"
	ProviderXero       Provider = "xero"
)

// Valid reports whether the provider is one this service can export to
func (p Provider) Valid() bool {
	return p == ProviderQuickBooks || p == ProviderXero
}

// Direction defines the two sides of a journal posting
type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

// Opposite returns the other posting side
func (d Direction) Opposite() Direction {
	if d == DirectionDebit {
		return DirectionCredit
	}
	return DirectionDebit
}

// AccountType is the closed vocabulary of logical chart-of-accounts buckets
// that the journal builder emits and the account mapper resolves
type AccountType string

const (
	AccountTypeRevenue            AccountType = "revenue"
	AccountTypeShippingIncome     AccountType = "shipping_income"
	AccountTypeFeesExpense        AccountType = "fees_expense"
	AccountTypeRefundsContra      AccountType = "refunds_contra"
	AccountTypeChargebacksExpense AccountType = "chargebacks_expense"
	AccountTypeShippingCost       AccountType = "shipping_cost"
	AccountTypeSalesTaxLiability  AccountType = "sales_tax_liability"
	AccountTypeClearing           AccountType = "clearing"
)

// AllAccountTypes returns every logical bucket, in a stable order.
// The reversal verifier builds one posting per entry of this slice.
func AllAccountTypes() []AccountType {
	return []AccountType{
		AccountTypeRevenue,
		AccountTypeShippingIncome,
		AccountTypeFeesExpense,
		AccountTypeRefundsContra,
		AccountTypeChargebacksExpense,
		AccountTypeShippingCost,
		AccountTypeSalesTaxLiability,
		AccountTypeClearing,
	}
}

// ExportStatus defines the terminal states of one journal submission attempt
type ExportStatus string

const (
	ExportStatusPreviewed ExportStatus = "PREVIEWED"
	ExportStatusCommitted ExportStatus = "COMMITTED"
	ExportStatusError     ExportStatus = "ERROR"
)

// RecordType distinguishes imported sales from imported expenses
type RecordType string

const (
	RecordTypeSale    RecordType = "SALE"
	RecordTypeExpense RecordType = "EXPENSE"
)

// AggregationMode selects how the journal builder groups records
type AggregationMode string

const (
	AggregationSummarized AggregationMode = "summarized"
	AggregationPerOrder   AggregationMode = "per_order"
)
