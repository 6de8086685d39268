package util

import "fmt"

// FormatSize renders a byte count with one decimal place, e.g. "1.5 KB".
func FormatSize(size int64) string {
	const unit = 1024
	if size < 0 {
		return "-"
	}
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	units := []string{"KB", "MB", "GB", "TB", "PB", "EB"}
	value := float64(size) / unit
	exp := 0
	for value >= unit && exp < len(units)-1 {
		value /= unit
		exp++
	}
	if value == float64(int64(value)) {
		return fmt.Sprintf("%d %s", int64(value), units[exp])
	}
	return fmt.Sprintf("%.1f %s", value, units[exp])
}
