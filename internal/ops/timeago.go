package ops

import (
	"fmt"
	"time"
)

// TimeAgo renders the age of t relative to now as "42s ago", "5m ago",
// "3h ago" or "2d ago". A zero t renders as "".
func TimeAgo(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	diff := max(now.Sub(t), 0)
	switch {
	case diff < time.Minute:
		return fmt.Sprintf("%ds ago", int(diff/time.Second))
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff/time.Minute))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff/time.Hour))
	default:
		return fmt.Sprintf("%dd ago", int(diff/(24*time.Hour)))
	}
}
