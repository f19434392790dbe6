// Package menu provides the sidebar navigation registry of the dashboard.
//
// The registry is authored as YAML embedded in the binary and parsed once.
// It is immutable configuration: callers always receive copies.
package menu

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed menu.yaml
var defaultMenuYAML []byte

// Entry is one item of the sidebar. It is either a section header or a
// navigable/parent item. Entries with children open a submenu and are not
// navigation targets themselves.
type Entry struct {
	Header string `yaml:"header,omitempty" json:"header,omitempty"`

	Title    string  `yaml:"title,omitempty" json:"title,omitempty"`
	Icon     string  `yaml:"icon,omitempty" json:"icon,omitempty"`
	To       string  `yaml:"to,omitempty" json:"to,omitempty"`
	Children []Entry `yaml:"children,omitempty" json:"children,omitempty"`

	Chip        string `yaml:"chip,omitempty" json:"chip,omitempty"`
	ChipColor   string `yaml:"chipColor,omitempty" json:"chipColor,omitempty"`
	ChipVariant string `yaml:"chipVariant,omitempty" json:"chipVariant,omitempty"`
	ChipIcon    string `yaml:"chipIcon,omitempty" json:"chipIcon,omitempty"`

	Disabled   bool   `yaml:"disabled,omitempty" json:"disabled,omitempty"`
	Type       string `yaml:"type,omitempty" json:"type,omitempty"`
	SubCaption string `yaml:"subCaption,omitempty" json:"subCaption,omitempty"`
	Divider    bool   `yaml:"divider,omitempty" json:"divider,omitempty"`

	// Capability is the permission key needed to see the entry. Empty means everyone.
	Capability string `yaml:"capability,omitempty" json:"capability,omitempty"`
}

// IsHeader reports whether the entry is a section header.
func (e Entry) IsHeader() bool {
	return e.Header != ""
}

// IsSubmenu reports whether the entry opens a submenu.
func (e Entry) IsSubmenu() bool {
	return len(e.Children) > 0
}

var (
	loadOnce sync.Once
	loaded   []Entry
	loadErr  error
)

// Default returns the built-in menu. It panics if the embedded YAML is invalid,
// which is caught by the package tests.
func Default() []Entry {
	loadOnce.Do(func() {
		loaded, loadErr = Parse(defaultMenuYAML)
	})
	if loadErr != nil {
		panic(fmt.Sprintf("menu: embedded registry is invalid: %v", loadErr))
	}
	return Clone(loaded)
}

// Parse decodes a YAML menu document.
func Parse(data []byte) ([]Entry, error) {
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse menu: %w", err)
	}
	return entries, nil
}

// Clone deep-copies entries.
func Clone(entries []Entry) []Entry {
	if entries == nil {
		return nil
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = e
		out[i].Children = Clone(e.Children)
	}
	return out
}

// Walk calls fn for every entry depth first. depth is 0 for top-level entries.
func Walk(entries []Entry, fn func(e Entry, depth int)) {
	var walk func([]Entry, int)
	walk = func(list []Entry, depth int) {
		for _, e := range list {
			fn(e, depth)
			walk(e.Children, depth+1)
		}
	}
	walk(entries, 0)
}

// Targets returns every navigation path in the menu, in order.
func Targets(entries []Entry) []string {
	var paths []string
	Walk(entries, func(e Entry, _ int) {
		if e.To != "" && !e.IsSubmenu() {
			paths = append(paths, e.To)
		}
	})
	return paths
}

// ErrInvalidEntry is wrapped by Validate for authoring mistakes.
var ErrInvalidEntry = errors.New("invalid menu entry")

// Validate reports authoring mistakes. It is a lint for tests and the CLI;
// the dashboard never validates the registry at runtime.
func Validate(entries []Entry) error {
	var errs []error
	Walk(entries, func(e Entry, depth int) {
		switch {
		case e.IsHeader() && (e.Title != "" || e.To != "" || e.IsSubmenu()):
			errs = append(errs, fmt.Errorf("%w: header %q also declares navigation fields", ErrInvalidEntry, e.Header))
		case e.IsHeader() && depth > 0:
			errs = append(errs, fmt.Errorf("%w: header %q is nested", ErrInvalidEntry, e.Header))
		case !e.IsHeader() && !e.Divider && e.Title == "":
			errs = append(errs, fmt.Errorf("%w: entry without title (to=%q)", ErrInvalidEntry, e.To))
		case !e.IsHeader() && !e.Divider && e.To == "" && !e.IsSubmenu():
			errs = append(errs, fmt.Errorf("%w: %q has neither a path nor children", ErrInvalidEntry, e.Title))
		case e.IsSubmenu() && e.To != "":
			errs = append(errs, fmt.Errorf("%w: submenu %q declares path %q that is never linked", ErrInvalidEntry, e.Title, e.To))
		}
	})
	return errors.Join(errs...)
}
