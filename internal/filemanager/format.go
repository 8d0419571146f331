package filemanager

import "fmt"

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// FormatSize renders a byte count in human-readable form: whole bytes,
// two decimals for larger units.
func FormatSize(size int64) string {
	value := float64(size)
	for _, unit := range sizeUnits {
		if value < 1024 || unit == sizeUnits[len(sizeUnits)-1] {
			if unit == "B" {
				return fmt.Sprintf("%d %s", size, unit)
			}
			return fmt.Sprintf("%.2f %s", value, unit)
		}
		value /= 1024
	}
	return fmt.Sprintf("%d B", size)
}
