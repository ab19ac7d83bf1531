package cli

import (
	"fmt"
	"time"
)

// FormatDuration renders an elapsed time compactly: milliseconds under a
// second, seconds under a minute, minutes and seconds above that.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		m := int(d.Minutes())
		rest := d - time.Duration(m)*time.Minute
		return fmt.Sprintf("%dm%.1fs", m, rest.Seconds())
	}
}

// FormatBytes renders a byte count with a binary unit.
func FormatBytes(n int64) string {
	const (
		kb = 1 << 10
		mb = 1 << 20
		gb = 1 << 30
	)
	switch {
	case n < kb:
		return fmt.Sprintf("%d B", n)
	case n < mb:
		return fmt.Sprintf("%.2f KB", float64(n)/kb)
	case n < gb:
		return fmt.Sprintf("%.2f MB", float64(n)/mb)
	default:
		return fmt.Sprintf("%.2f GB", float64(n)/gb)
	}
}

// FormatHz renders a frequency with one decimal.
func FormatHz(f float64) string {
	return fmt.Sprintf("%.1f Hz", f)
}
