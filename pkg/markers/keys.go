package markers

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewBlobKey builds the object key for a freshly picked image. The millisecond
// timestamp keeps keys time-ordered; the random suffix separates creates that
// land in the same millisecond.
func NewBlobKey(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d-%s.jpg", now.UnixMilli(), suffix)
}
