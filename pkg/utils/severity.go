package utils

import "strings"

type Severity int

const (
	Undefined Severity = iota

	INFO

	LOW

	MEDIUM

	HIGH

	CRITICAL

	UNKOWN
)

var SeverityMap = map[string]Severity{
	"info":     INFO,
	"low":      LOW,
	"medium":   MEDIUM,
	"high":     HIGH,
	"critical": CRITICAL,
	"unkown":   UNKOWN,
	"unknown":  UNKOWN,
}

func ParseSeverity(s string) Severity {
	return SeverityMap[strings.ToLower(strings.TrimSpace(s))]
}

func (s Severity) String() string {
	switch s {
	case INFO:
		return "info"
	case LOW:
		return "low"
	case MEDIUM:
		return "medium"
	case HIGH:
		return "high"
	case CRITICAL:
		return "critical"
	case UNKOWN:
		return "unknown"
	}
	return ""
}

// SeverityRange is an inclusive band such as "medium,critical". An empty
// bound is open.
type SeverityRange struct {
	Min Severity
	Max Severity
}

// ParseSeverityRange reads "min,max" or a single level. A blank string
// matches everything from info up.
func ParseSeverityRange(s string) SeverityRange {
	r := SeverityRange{Min: INFO, Max: CRITICAL}
	if IsBlank(s) {
		return r
	}
	parts := strings.SplitN(s, ",", 2)
	if lv := ParseSeverity(parts[0]); lv != Undefined {
		r.Min = lv
		if len(parts) == 1 {
			r.Max = lv
		}
	}
	if len(parts) == 2 {
		if lv := ParseSeverity(parts[1]); lv != Undefined {
			r.Max = lv
		}
	}
	return r
}

func (r SeverityRange) Contains(severity string) bool {
	lv := ParseSeverity(severity)
	if lv == Undefined || lv == UNKOWN {
		return false
	}
	return lv >= r.Min && lv <= r.Max
}
