// Package catalog holds the type ontology used to annotate program trees.
//
// An ontology is a text resource with one "symbol:type" entry per line.
// Lines without a colon (comments, headers, blank lines) are ignored.
package catalog

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// ErrUnknownSymbol matches every *LookupError with errors.Is.
var ErrUnknownSymbol = errors.New("unknown symbol")

// LookupError is returned when a symbol has no entry in the catalog.
type LookupError struct {
	Symbol string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("no type for symbol %q", e.Symbol)
}

// Is makes errors.Is(err, ErrUnknownSymbol) hold for any LookupError.
func (e *LookupError) Is(target error) bool {
	return target == ErrUnknownSymbol
}

// EntryError reports a malformed ontology line.
type EntryError struct {
	Line   int
	Reason string
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("ontology line %d: %s", e.Line, e.Reason)
}

// Catalog is an immutable symbol -> type mapping.
// It is safe for concurrent use.
type Catalog struct {
	types map[string]string
}

// New builds a catalog from a map. The map is copied.
func New(types map[string]string) *Catalog {
	c := &Catalog{types: make(map[string]string, len(types))}
	for k, v := range types {
		c.types[k] = v
	}
	return c
}

// Load reads an ontology. Later entries for the same symbol override earlier ones.
func Load(r io.Reader) (*Catalog, error) {
	types := make(map[string]string)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		symbol, typ, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		symbol, typ = strings.TrimSpace(symbol), strings.TrimSpace(typ)
		if symbol == "" {
			return nil, &EntryError{Line: lineNo, Reason: "empty symbol"}
		}
		if typ == "" {
			return nil, &EntryError{Line: lineNo, Reason: fmt.Sprintf("empty type for %q", symbol)}
		}
		types[symbol] = typ
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ontology: %w", err)
	}
	return &Catalog{types: types}, nil
}

// LoadFile reads an ontology file.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ontology: %w", err)
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Lookup returns the type of symbol, or a *LookupError.
func (c *Catalog) Lookup(symbol string) (string, error) {
	typ, ok := c.types[symbol]
	if !ok {
		return "", &LookupError{Symbol: symbol}
	}
	return typ, nil
}

// Type is the comma-ok form of Lookup.
func (c *Catalog) Type(symbol string) (string, bool) {
	typ, ok := c.types[symbol]
	return typ, ok
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.types)
}

// Symbols returns every symbol in sorted order.
func (c *Catalog) Symbols() []string {
	out := make([]string, 0, len(c.types))
	for s := range c.types {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Digest identifies the catalog contents.
func (c *Catalog) Digest() string {
	h := sha256.New()
	_, _ = c.WriteTo(h)
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// WriteTo writes the catalog back in ontology form, sorted by symbol.
func (c *Catalog) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, s := range c.Symbols() {
		n, err := fmt.Fprintf(w, "%s:%s\n", s, c.types[s])
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
