package gateway

import (
	"regexp"
	"strings"
)

// Verdict is the state a generated query reaches in the write gate
type Verdict int

const (
	// VerdictRead queries execute immediately
	VerdictRead Verdict = iota
	// VerdictPendingWrite queries are withheld until the caller confirms
	VerdictPendingWrite
	// VerdictConfirmedWrite queries carry an explicit confirmation and execute
	VerdictConfirmedWrite
)

func (v Verdict) String() string {
	switch v {
	case VerdictRead:
		return "read"
	case VerdictPendingWrite:
		return "pending_write"
	case VerdictConfirmedWrite:
		return "confirmed_write"
	}
	return "unknown"
}

// Executes reports whether a query in this state may reach the store
func (v Verdict) Executes() bool {
	return v != VerdictPendingWrite
}

var writeVerb = regexp.MustCompile(`(?i)^(insert|update|delete|merge|alter|drop|truncate|create|rename|exec|grant|revoke)\b`)

// IsWrite reports whether a query starts with a mutating verb
func IsWrite(query string) bool {
	return writeVerb.MatchString(strings.TrimSpace(query))
}

// Decide moves a query out of the unclassified state
func Decide(query string, confirm bool) Verdict {
	switch {
	case !IsWrite(query):
		return VerdictRead
	case confirm:
		return VerdictConfirmedWrite
	default:
		return VerdictPendingWrite
	}
}
