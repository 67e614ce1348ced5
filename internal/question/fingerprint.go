package question

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strconv"
	"strings"
)

// Fingerprint identifies a (document-set, question-text) pair. Ids are sorted
// ascending before hashing so the same logical selection always hashes the
// same regardless of how the caller gathered it.
func Fingerprint(documentIDs []int64, text string) string {
	ids := make([]int64, len(documentIDs))
	copy(ids, documentIDs)
	slices.Sort(ids)

	var sb strings.Builder
	for i, id := range ids {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatInt(id, 10))
	}
	sb.WriteByte('_')
	sb.WriteString(text)

	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}
