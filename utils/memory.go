package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// MemorySize represents a byte count taken from a server buffer variable,
// status counter, or on-disk measurement.
type MemorySize int64

const (
	Byte MemorySize = 1
	KB   MemorySize = 1024 * Byte
	MB   MemorySize = 1024 * KB
	GB   MemorySize = 1024 * MB
	TB   MemorySize = 1024 * GB
)

// String formats the size the way buffer variables are usually read: one
// decimal place and a single-letter unit ("16.0M", "1.2G").
func (m MemorySize) String() string {
	switch {
	case m >= TB:
		return fmt.Sprintf("%.1fT", float64(m)/float64(TB))
	case m >= GB:
		return fmt.Sprintf("%.1fG", float64(m)/float64(GB))
	case m >= MB:
		return fmt.Sprintf("%.1fM", float64(m)/float64(MB))
	case m >= KB:
		return fmt.Sprintf("%.1fK", float64(m)/float64(KB))
	default:
		return fmt.Sprintf("%dB", int64(m))
	}
}

// Short formats the size rounded to a whole unit ("64M", "2G"), used in
// variable-adjustment suggestions where a decimal would read oddly.
func (m MemorySize) Short() string {
	switch {
	case m >= TB:
		return fmt.Sprintf("%.0fT", float64(m)/float64(TB))
	case m >= GB:
		return fmt.Sprintf("%.0fG", float64(m)/float64(GB))
	case m >= MB:
		return fmt.Sprintf("%.0fM", float64(m)/float64(MB))
	case m >= KB:
		return fmt.Sprintf("%.0fK", float64(m)/float64(KB))
	default:
		return fmt.Sprintf("%dB", int64(m))
	}
}

// Bytes returns the size as a raw byte count.
func (m MemorySize) Bytes() int64 {
	return int64(m)
}

// MB returns the size in megabytes.
func (m MemorySize) MB() float64 {
	return float64(m) / float64(MB)
}

// GB returns the size in gigabytes.
func (m MemorySize) GB() float64 {
	return float64(m) / float64(GB)
}

// ParseMemorySize parses strings like "16M", "8G", "1024K", or a plain byte
// count.
func ParseMemorySize(s string) (MemorySize, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty memory size string")
	}

	multiplier := Byte
	valueStr := s
	switch strings.ToUpper(s[len(s)-1:]) {
	case "T":
		multiplier, valueStr = TB, s[:len(s)-1]
	case "G":
		multiplier, valueStr = GB, s[:len(s)-1]
	case "M":
		multiplier, valueStr = MB, s[:len(s)-1]
	case "K":
		multiplier, valueStr = KB, s[:len(s)-1]
	case "B":
		valueStr = s[:len(s)-1]
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid memory size: %s", s)
	}
	return MemorySize(value * float64(multiplier)), nil
}

// MustParseMemorySize is like ParseMemorySize but panics on error.
func MustParseMemorySize(s string) MemorySize {
	size, err := ParseMemorySize(s)
	if err != nil {
		panic(err)
	}
	return size
}
