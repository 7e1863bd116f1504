// Package quickbooks implements the QuickBooks-style ledger provider: one
// journal-entry envelope POSTed per journal, authorized with the org's bearer
// credential.
package quickbooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"

	"github.com/sellerledger-sync/internal/config"
	"github.com/sellerledger-sync/internal/domain/credential"
	"github.com/sellerledger-sync/internal/domain/journal"
	"github.com/sellerledger-sync/internal/domain/shared"
	"github.com/sellerledger-sync/internal/platform/providers"
	"github.com/shopspring/decimal"
)

// Client posts journal entries to a QuickBooks-style API
type Client struct {
	baseURL      string
	minorVersion string
	httpClient   *http.Client
	logger       *slog.Logger
}

// NewClient creates a QuickBooks provider client
func NewClient(logger *slog.Logger, cfg *config.QuickBooksConfig) *Client {
	return &Client{
		baseURL:      cfg.BaseURL,
		minorVersion: cfg.MinorVersion,
		httpClient:   &http.Client{Timeout: cfg.RequestTimeout},
		logger:       logger,
	}
}

// Name returns the provider identifier
func (c *Client) Name() shared.Provider {
	return shared.ProviderQuickBooks
}

// Wire schema: lines grouped under a single JournalEntry envelope tagged
// with the transaction date and a descriptive note.
type journalEntryPayload struct {
	TxnDate     string      `json:"TxnDate"`
	PrivateNote string      `json:"PrivateNote,omitempty"`
	Line        []entryLine `json:"Line"`
}

type entryLine struct {
	Description string     `json:"Description,omitempty"`
	Amount      float64    `json:"Amount"`
	DetailType  string     `json:"DetailType"`
	Detail      lineDetail `json:"JournalEntryLineDetail"`
}

type lineDetail struct {
	PostingType string   `json:"PostingType"` // "Debit" or "Credit"
	AccountRef  typeRef  `json:"AccountRef"`
	ClassRef    *typeRef `json:"ClassRef,omitempty"`
	LocationRef *typeRef `json:"DepartmentRef,omitempty"`
}

type typeRef struct {
	Value string `json:"value"`
}

type journalEntryResponse struct {
	JournalEntry struct {
		ID string `json:"Id"`
	} `json:"JournalEntry"`
	Fault *struct {
		Error []struct {
			Message string `json:"Message"`
			Detail  string `json:"Detail"`
		} `json:"Error"`
	} `json:"Fault"`
}

// PostJournal submits one fully mapped journal. The returned receipt is
// non-nil whenever an HTTP response was received, so callers can persist the
// status and raw body even for rejections. Deadline overruns surface as
// providers.TimeoutError, non-2xx responses as providers.RejectedError.
func (c *Client) PostJournal(ctx context.Context, cred *credential.Credential, j *journal.Journal, opts providers.PostOptions) (*providers.Receipt, error) {
	payload := journalEntryPayload{
		TxnDate:     j.Date,
		PrivateNote: j.Memo,
		Line:        make([]entryLine, 0, len(j.Lines)),
	}

	for _, line := range j.Lines {
		if !line.Account.Resolved() {
			return nil, fmt.Errorf("unresolved account %q on journal %s", line.Account.Logical, j.Date)
		}

		wire := entryLine{
			Description: line.Memo,
			Amount:      dollars(line.AmountCents),
			DetailType:  "JournalEntryLineDetail",
			Detail: lineDetail{
				PostingType: postingType(line.Direction),
				AccountRef:  typeRef{Value: line.Account.External},
			},
		}
		if opts.ClassID != "" {
			wire.Detail.ClassRef = &typeRef{Value: opts.ClassID}
		}
		if opts.LocationID != "" {
			wire.Detail.LocationRef = &typeRef{Value: opts.LocationID}
		}
		payload.Line = append(payload.Line, wire)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal journal entry: %w", err)
	}

	url := fmt.Sprintf("%s/company/%s/journalentry", c.baseURL, cred.RealmID)
	if c.minorVersion != "" {
		url += "?minorversion=" + c.minorVersion
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build journal entry request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, providers.TimeoutError{Op: "post journalentry"}
		}
		return nil, fmt.Errorf("journal entry request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal entry response: %w", err)
	}

	receipt := &providers.Receipt{
		HTTPStatus: resp.StatusCode,
		RawBody:    string(raw),
	}

	if resp.StatusCode >= 300 {
		c.logger.Error("QuickBooks rejected journal entry",
			"status", resp.StatusCode,
			"date", j.Date,
			"marketplace", j.Marketplace,
		)
		return receipt, providers.RejectedError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var parsed journalEntryResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		// A 2xx with an unreadable body still committed on the provider side;
		// keep the receipt so provenance records the attempt.
		c.logger.Warn("Failed to decode journal entry response", "error", err)
		return receipt, nil
	}
	receipt.ExternalID = parsed.JournalEntry.ID

	c.logger.Info("Posted journal entry",
		"external_id", receipt.ExternalID,
		"date", j.Date,
		"marketplace", j.Marketplace,
		"lines", len(j.Lines),
	)

	return receipt, nil
}

func postingType(d shared.Direction) string {
	if d == shared.DirectionDebit {
		return "Debit"
	}
	return "Credit"
}

// dollars converts integer cents to the provider's decimal currency units.
// Cent-precision values are exact in float64.
func dollars(cents int64) float64 {
	return decimal.NewFromInt(cents).Shift(-2).InexactFloat64()
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
