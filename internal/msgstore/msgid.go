package msgstore

import (
	"fmt"
	"time"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/models"
)

// NextID derives the identifier for a message created at now:
// MSG-<UTC date>-<seq>, where seq is one more than the number of index
// entries already carrying that date, zero-padded to three digits.
//
// The allocator does no locking of its own. Two callers that observe the
// same index state get the same ID, so the store serializes every
// allocate-and-append under its write lock.
func NextID(idx *models.MessageIndex, now time.Time) string {
	date := now.UTC().Format("2006-01-02")
	return fmt.Sprintf("MSG-%s-%03d", date, idx.CountForDate(date)+1)
}
