package feed

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ContentID creates a deterministic short ID from content (a URL, or a
// provider key). Re-fetching the same item yields the same ID, which keeps
// ID-based deduplication meaningful across pages.
func ContentID(prefix, content string) string {
	h := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%s-%s", prefix, hex.EncodeToString(h[:8]))
}
