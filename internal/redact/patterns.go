package redact

import "regexp"

// Pattern is a named value class that can be masked.
type Pattern struct {
	Name  string
	Regex *regexp.Regexp
	Type  string // placeholder prefix, e.g. [IPV4:1a2b]
}

// Processors and panels log their own addresses, MACs and device ids.
var (
	ipv4Regex  = regexp.MustCompile(`\b(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)(?:\.(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)){3}\b`)
	macRegex   = regexp.MustCompile(`\b(?:[0-9A-Fa-f]{2}[:-]){5}[0-9A-Fa-f]{2}\b`)
	emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	uuidRegex  = regexp.MustCompile(`\b[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\b`)
	credRegex  = regexp.MustCompile(`(?i)(?:password|passwd|pwd|token|secret)\s*[:=]\s*\S{4,}`)
)

// BuiltIn holds every available pattern by name.
var BuiltIn = map[string]Pattern{
	"ipv4":        {Name: "ipv4", Regex: ipv4Regex, Type: "IPV4"},
	"mac_address": {Name: "mac_address", Regex: macRegex, Type: "MAC"},
	"email":       {Name: "email", Regex: emailRegex, Type: "EMAIL"},
	"uuid":        {Name: "uuid", Regex: uuidRegex, Type: "UUID"},
	"credential":  {Name: "credential", Regex: credRegex, Type: "SECRET"},
}

// DefaultPatterns returns the pattern names used when none are configured.
func DefaultPatterns() []string {
	return []string{"ipv4", "mac_address", "email", "credential"}
}

// Lookup returns the patterns for names in the given order. Unknown names
// are ignored.
func Lookup(names []string) []Pattern {
	patterns := make([]Pattern, 0, len(names))
	for _, name := range names {
		if p, ok := BuiltIn[name]; ok {
			patterns = append(patterns, p)
		}
	}
	return patterns
}
