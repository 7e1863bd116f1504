package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string // YYYY-MM-DD
	}{
		{"ISO8601", "2024-03-15T10:30:00Z", "2024-03-15"},
		{"ISODateOnly", "2024-03-15", "2024-03-15"},
		{"SlashMDY", "3/15/2024", "2024-03-15"},
		{"SlashMDYShortYear", "3/15/24", "2024-03-15"},
		{"SlashYMD", "2024/3/15", "2024-03-15"},
		{"DashDMonY", "15-Mar-2024", "2024-03-15"},
		{"Padded", "  2024-03-15  ", "2024-03-15"},
		{"FallbackLongForm", "March 15, 2024", "2024-03-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Date(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestDate_Invalid(t *testing.T) {
	for _, input := range []string{"", "not a date", "2024-13-45"} {
		_, err := Date(input)
		assert.ErrorIs(t, err, InvalidDateError{}, "input %q", input)
	}
}

func TestEpochMillis(t *testing.T) {
	ms, err := EpochMillis("1970-01-01T00:00:01Z")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), ms)
}
