package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// ContentHash computes the deterministic dedup hash for an imported row over
// its five identifying fields: source label, occurred-at (epoch ms), amount
// in cents, category, and vendor. Category and vendor are canonicalized
// (trimmed, lowercased) so cosmetic differences don't defeat deduplication.
//
// The hash is stable across process restarts and platforms; extraneous row
// fields never participate.
func ContentHash(source string, occurredAtMillis int64, amountCents int64, category, vendor string) string {
	payload := fmt.Sprintf("%s|%d|%d|%s|%s",
		strings.TrimSpace(source),
		occurredAtMillis,
		amountCents,
		canonicalField(category),
		canonicalField(vendor),
	)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

func canonicalField(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
