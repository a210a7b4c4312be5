package timefmt

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatClock renders a number of seconds as zero-padded hours, minutes and
// seconds ("01:30:00"). Negative values are treated as zero.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}

// ParseClock is the inverse of FormatClock.
func ParseClock(value string) (int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("clock value %q: expected HH:MM:SS", value)
	}

	fields := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("clock value %q: invalid field %q", value, part)
		}
		fields[i] = n
	}

	if fields[1] > 59 || fields[2] > 59 {
		return 0, fmt.Errorf("clock value %q: minutes and seconds must be below 60", value)
	}

	return fields[0]*3600 + fields[1]*60 + fields[2], nil
}
