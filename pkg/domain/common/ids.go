package common

import (
	"strings"

	"github.com/google/uuid"
)

// FormatID renders the opaque prefixed ID form spec.md §3 requires for
// external representations (user_…, proj_…, key_…, pm_…, wal_…, tx_…): the
// prefix, an underscore, and the UUID with its dashes stripped.
func FormatID(prefix string, id uuid.UUID) string {
	return prefix + "_" + strings.ReplaceAll(id.String(), "-", "")
}

// ParseID reverses FormatID, reinserting dashes at the standard UUID
// positions (8-4-4-4-12) before parsing.
func ParseID(prefix, s string) (uuid.UUID, error) {
	hex := strings.TrimPrefix(s, prefix+"_")
	if len(hex) != 32 {
		return uuid.Nil, NewErrBadRequest("malformed identifier")
	}
	dashed := hex[0:8] + "-" + hex[8:12] + "-" + hex[12:16] + "-" + hex[16:20] + "-" + hex[20:32]
	return uuid.Parse(dashed)
}
