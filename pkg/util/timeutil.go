package util

import (
	"fmt"
	"strings"
	"time"
)

// IdleDuration returns how long a ticket has sat waiting for assignment:
// the span from creation to assignment when assigned, otherwise creation to
// now.
func IdleDuration(createdAt time.Time, assignedAt *time.Time, now time.Time) time.Duration {
	if assignedAt != nil {
		return assignedAt.Sub(createdAt)
	}
	return now.Sub(createdAt)
}

// FormatDuration renders a duration as a compact human-readable string such
// as "2d 4h 15m". Sub-minute durations render as "0m".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute

	parts := make([]string, 0, 3)
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	return strings.Join(parts, " ")
}
