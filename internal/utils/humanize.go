package utils

import (
	"strconv"
	"strings"
	"time"
)

const (
	fileSizeStep    = 1024
	timestampLayout = "2006-01-02 15:04"
)

var fileSizeUnits = []string{"b", "kb", "mb", "gb", "tb", "pb"}

// FormatFileSize renders a byte count with a lower-case unit, one decimal below ten units.
func FormatFileSize(byteCount int64) string {
	if byteCount <= 0 {
		return "0" + fileSizeUnits[0]
	}
	if byteCount < fileSizeStep {
		return strconv.FormatInt(byteCount, 10) + fileSizeUnits[0]
	}
	scaled := float64(byteCount)
	unitIndex := 0
	for scaled >= fileSizeStep && unitIndex < len(fileSizeUnits)-1 {
		scaled /= fileSizeStep
		unitIndex++
	}
	precision := 0
	if scaled < 10 {
		precision = 1
	}
	rendered := strings.TrimSuffix(strconv.FormatFloat(scaled, 'f', precision, 64), ".0")
	return rendered + fileSizeUnits[unitIndex]
}

// FormatTimestamp renders a modification time in the local zone to minute precision.
func FormatTimestamp(value time.Time) string {
	if value.IsZero() {
		return EmptyString
	}
	return value.In(time.Local).Format(timestampLayout)
}
