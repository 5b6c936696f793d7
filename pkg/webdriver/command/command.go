// Package command holds the WebDriver command catalog: the table mapping a
// command identifier to an HTTP method and a URL template.
package command

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"
)

var (
	// ErrUnknown is returned when an identifier is not in the catalog.
	ErrUnknown = errors.New("unknown command")
	// ErrMissingParameter is returned when a URL placeholder has no value.
	ErrMissingParameter = errors.New("missing url parameter")
)

// Command is a catalog entry. Path placeholders are written as {name}.
type Command struct {
	Method string
	Path   string
}

// Placeholders returns the placeholder names in path order.
func (c Command) Placeholders() []string {
	var names []string
	rest := c.Path
	for {
		start := strings.IndexByte(rest, '{')
		if start < 0 {
			return names
		}
		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			return names
		}
		names = append(names, rest[start+1:start+end])
		rest = rest[start+end+1:]
	}
}

// Catalog is an immutable command table. The zero value is empty.
type Catalog struct {
	commands map[string]Command
}

// New builds a catalog from entries. The map is copied.
func New(entries map[string]Command) *Catalog {
	return &Catalog{commands: maps.Clone(entries)}
}

// With returns a new catalog containing c's entries overlaid with extra.
func (c *Catalog) With(extra map[string]Command) *Catalog {
	merged := make(map[string]Command, c.Len()+len(extra))
	if c != nil {
		maps.Copy(merged, c.commands)
	}
	maps.Copy(merged, extra)
	return &Catalog{commands: merged}
}

// Lookup returns the entry registered for id.
func (c *Catalog) Lookup(id string) (Command, bool) {
	if c == nil {
		return Command{}, false
	}
	cmd, ok := c.commands[id]
	return cmd, ok
}

// Len reports the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.commands)
}

// IDs returns the registered identifiers sorted.
func (c *Catalog) IDs() []string {
	if c == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(c.commands))
}

// Resolved is a command bound to concrete parameters.
type Resolved struct {
	ID     string
	Method string
	Path   string
	// Body holds the parameters left over after placeholder substitution.
	Body map[string]any
}

// Resolve looks up id and substitutes its placeholders from params.
// Parameters consumed by the path are removed from the returned body;
// params itself is not modified.
func (c *Catalog) Resolve(id string, params map[string]any) (Resolved, error) {
	cmd, ok := c.Lookup(id)
	if !ok {
		return Resolved{}, fmt.Errorf("%w: %s", ErrUnknown, id)
	}

	body := make(map[string]any, len(params))
	maps.Copy(body, params)

	var b strings.Builder
	rest := cmd.Path
	for {
		start := strings.IndexByte(rest, '{')
		if start < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			b.WriteString(rest)
			break
		}
		name := rest[start+1 : start+end]
		value, ok := body[name]
		if !ok || value == nil {
			return Resolved{}, fmt.Errorf("%w: %s requires %q", ErrMissingParameter, id, name)
		}
		b.WriteString(rest[:start])
		b.WriteString(url.PathEscape(fmt.Sprint(value)))
		delete(body, name)
		rest = rest[start+end+1:]
	}
	// The session id travels in the path only.
	delete(body, "sessionId")

	return Resolved{ID: id, Method: cmd.Method, Path: b.String(), Body: body}, nil
}
