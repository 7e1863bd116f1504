package quickbooks

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sellerledger-sync/internal/config"
	"github.com/sellerledger-sync/internal/domain/credential"
	"github.com/sellerledger-sync/internal/domain/journal"
	"github.com/sellerledger-sync/internal/domain/shared"
	"github.com/sellerledger-sync/internal/platform/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, baseURL string, timeout time.Duration) *Client {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	return NewClient(logger, &config.QuickBooksConfig{
		BaseURL:        baseURL,
		RequestTimeout: timeout,
		MinorVersion:   "65",
	})
}

func testJournal() *journal.Journal {
	return &journal.Journal{
		Date: "2024-03-15",
		Memo: "Daily sales summary - etsy",
		Lines: []journal.Line{
			{Account: journal.ExternalAccount("39"), AmountCents: 11800, Direction: shared.DirectionCredit, Memo: "revenue"},
			{Account: journal.ExternalAccount("85"), AmountCents: 11800, Direction: shared.DirectionDebit, Memo: "clearing"},
		},
	}
}

func testCredential() *credential.Credential {
	return &credential.Credential{
		OrgID:       uuid.New(),
		Provider:    shared.ProviderQuickBooks,
		AccessToken: "token-123",
		RealmID:     "realm-9",
		ExpiresAt:   time.Now().Add(time.Hour),
	}
}

func TestClient_PostJournal(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		var captured map[string]interface{}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/company/realm-9/journalentry", r.URL.Path)
			assert.Equal(t, "65", r.URL.Query().Get("minorversion"))
			assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))

			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, &captured))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"JournalEntry":{"Id":"qb-456"}}`))
		}))
		defer srv.Close()

		client := testClient(t, srv.URL, 5*time.Second)
		receipt, err := client.PostJournal(ctx, testCredential(), testJournal(), providers.PostOptions{})

		require.NoError(t, err)
		assert.Equal(t, "qb-456", receipt.ExternalID)
		assert.Equal(t, http.StatusOK, receipt.HTTPStatus)

		assert.Equal(t, "2024-03-15", captured["TxnDate"])
		lines := captured["Line"].([]interface{})
		require.Len(t, lines, 2)
		first := lines[0].(map[string]interface{})
		assert.Equal(t, 118.0, first["Amount"])
		detail := first["JournalEntryLineDetail"].(map[string]interface{})
		assert.Equal(t, "Credit", detail["PostingType"])
		assert.Equal(t, "39", detail["AccountRef"].(map[string]interface{})["value"])
	})

	t.Run("RejectionKeepsReceipt", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"Fault":{"Error":[{"Message":"Account not found"}]}}`))
		}))
		defer srv.Close()

		client := testClient(t, srv.URL, 5*time.Second)
		receipt, err := client.PostJournal(ctx, testCredential(), testJournal(), providers.PostOptions{})

		assert.ErrorIs(t, err, providers.RejectedError{})
		require.NotNil(t, receipt)
		assert.Equal(t, http.StatusBadRequest, receipt.HTTPStatus)
		assert.Contains(t, receipt.RawBody, "Account not found")
	})

	t.Run("TimeoutIsDistinct", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		client := testClient(t, srv.URL, 20*time.Millisecond)
		receipt, err := client.PostJournal(ctx, testCredential(), testJournal(), providers.PostOptions{})

		assert.Nil(t, receipt)
		assert.ErrorIs(t, err, providers.TimeoutError{})
	})

	t.Run("UnresolvedAccountFails", func(t *testing.T) {
		client := testClient(t, "http://unused", 5*time.Second)
		j := &journal.Journal{
			Date:  "2024-03-15",
			Lines: []journal.Line{{Account: journal.LogicalAccount(shared.AccountTypeRevenue), AmountCents: 1, Direction: shared.DirectionCredit}},
		}

		_, err := client.PostJournal(ctx, testCredential(), j, providers.PostOptions{})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unresolved account")
	})

	t.Run("ClassAndLocationRefs", func(t *testing.T) {
		var captured map[string]interface{}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, &captured))
			_, _ = w.Write([]byte(`{"JournalEntry":{"Id":"qb-1"}}`))
		}))
		defer srv.Close()

		client := testClient(t, srv.URL, 5*time.Second)
		_, err := client.PostJournal(ctx, testCredential(), testJournal(), providers.PostOptions{ClassID: "c1", LocationID: "l7"})
		require.NoError(t, err)

		detail := captured["Line"].([]interface{})[0].(map[string]interface{})["JournalEntryLineDetail"].(map[string]interface{})
		assert.Equal(t, "c1", detail["ClassRef"].(map[string]interface{})["value"])
		assert.Equal(t, "l7", detail["DepartmentRef"].(map[string]interface{})["value"])
	})
}
