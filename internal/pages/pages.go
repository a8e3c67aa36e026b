// Package pages resolves panel page numbers in diagnostics entries to the
// page names defined in a project.
//
// Processors log page changes as "Change to page 3 on device 'Panel'". The
// project map ties a device name to its id and a (device id, page index)
// pair to a page name, so the entry can read `Change to page "Lights"`.
package pages

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// UnresolvedMarker is appended to entries whose page could not be resolved.
const UnresolvedMarker = "[UNRESOLVED]"

// Map is the project data used for resolution.
type Map struct {
	// Devices maps a device name to its project id.
	Devices map[string]int `yaml:"devices"`
	// Pages maps "<device id>|<zero-based page index>" to a page name.
	Pages map[string]string `yaml:"pages"`
}

// PageKey builds the Pages key for a device id and zero-based page index.
func PageKey(deviceID, index int) string {
	return fmt.Sprintf("%d|%d", deviceID, index)
}

// Load reads a project map from a YAML file.
func Load(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read page map: %w", err)
	}
	return Parse(data)
}

// Parse decodes a project map from YAML.
func Parse(data []byte) (*Map, error) {
	var m Map
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse page map: %w", err)
	}
	if m.Devices == nil {
		m.Devices = make(map[string]int)
	}
	if m.Pages == nil {
		m.Pages = make(map[string]string)
	}
	return &m, nil
}

var pagePattern = regexp.MustCompile(`(?i)(.*?\bChange to page\s+)(\d+)(\s+on device\s+'([^']+)'.*)`)

// Resolver rewrites page change entries using a Map.
type Resolver struct {
	m *Map
}

// NewResolver creates a Resolver backed by m.
func NewResolver(m *Map) *Resolver {
	return &Resolver{m: m}
}

// Resolve replaces the page number in a page change entry with the quoted
// page name. Lines that are not page changes are returned unchanged and
// reported as resolved. When the page cannot be resolved the line gets
// UnresolvedMarker appended and false is returned.
func (r *Resolver) Resolve(line string) (string, bool) {
	if strings.TrimSpace(line) == "" {
		return line, true
	}

	m := pagePattern.FindStringSubmatchIndex(line)
	if m == nil {
		return line, true
	}
	prefix := line[m[2]:m[3]]
	pageText := line[m[4]:m[5]]
	suffix := line[m[6]:m[7]]
	device := line[m[8]:m[9]]

	page, err := strconv.Atoi(pageText)
	if err != nil || page <= 0 {
		return unresolved(line)
	}

	id, ok := r.m.Devices[device]
	if !ok {
		return unresolved(line)
	}

	name := r.m.Pages[PageKey(id, page-1)]
	if strings.TrimSpace(name) == "" {
		return unresolved(line)
	}

	return line[:m[0]] + prefix + `"` + name + `"` + suffix + line[m[1]:], true
}

func unresolved(line string) (string, bool) {
	return line + " " + UnresolvedMarker, false
}
