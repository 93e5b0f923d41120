package util

import (
	"fmt"
	"math"
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB", "TB"}

// FormatSize renders a byte count in the largest fitting 1024-based unit,
// rounded to two decimals.
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	exp := int(math.Log(float64(bytes)) / math.Log(1024))
	if exp >= len(sizeUnits) {
		exp = len(sizeUnits) - 1
	}

	value := float64(bytes) / math.Pow(1024, float64(exp))
	rounded := math.Round(value*100) / 100
	if rounded == math.Trunc(rounded) {
		return fmt.Sprintf("%d %s", int64(rounded), sizeUnits[exp])
	}
	return fmt.Sprintf("%g %s", rounded, sizeUnits[exp])
}
