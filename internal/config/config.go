// Package config provides configuration types and shared entry types for shpdiag.
package config

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Config holds the application-wide configuration.
type Config struct {
	Format    string          `mapstructure:"format"`
	Verbose   bool            `mapstructure:"verbose"`
	Color     string          `mapstructure:"color"`
	PagesFile string          `mapstructure:"pages_file"`
	Redaction RedactionConfig `mapstructure:"redaction"`
	Record    RecordConfig    `mapstructure:"record"`
}

// RedactionConfig controls masking of addresses and identifiers in decoded entries.
type RedactionConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Patterns selects which patterns to apply.
	// Available: ipv4, mac_address, email, uuid, credential
	Patterns []string `mapstructure:"patterns"`
}

// RecordConfig holds settings for live capture from a processor.
type RecordConfig struct {
	Port   int    `mapstructure:"port"`    // diagnostics websocket port
	OutDir string `mapstructure:"out_dir"` // where capture files are written
}

// Category classifies a reconstructed diagnostics entry.
type Category int

const (
	CategoryDefault Category = iota
	CategoryConnect
	CategoryDisconnect
	CategoryDriverCommand
	CategoryMacro
	CategoryDriverEvent
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryConnect,
	CategoryDisconnect,
	CategoryDriverCommand,
	CategoryMacro,
	CategoryDriverEvent,
	CategoryDefault,
}

// String returns the string representation of a Category.
func (c Category) String() string {
	switch c {
	case CategoryConnect:
		return "connect"
	case CategoryDisconnect:
		return "disconnect"
	case CategoryDriverCommand:
		return "driver-command"
	case CategoryMacro:
		return "macro"
	case CategoryDriverEvent:
		return "driver-event"
	default:
		return "default"
	}
}

// MarshalJSON implements json.Marshaler for Category.
func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON implements json.Unmarshaler for Category.
func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, ok := ParseCategory(s)
	if !ok {
		return fmt.Errorf("unknown category: %q", s)
	}
	*c = parsed
	return nil
}

// ParseCategory converts a string to a Category. The second result is false
// for names it does not recognize.
func ParseCategory(s string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "connect", "connected":
		return CategoryConnect, true
	case "disconnect", "disconnected":
		return CategoryDisconnect, true
	case "driver-command", "command", "cmd":
		return CategoryDriverCommand, true
	case "macro":
		return CategoryMacro, true
	case "driver-event", "event":
		return CategoryDriverEvent, true
	case "default":
		return CategoryDefault, true
	default:
		return CategoryDefault, false
	}
}

// Entry is one reconstructed logical log line.
type Entry struct {
	Line       int      `json:"line"`
	Text       string   `json:"text"`
	Category   Category `json:"category"`
	Unresolved bool     `json:"unresolved,omitempty"`
}
