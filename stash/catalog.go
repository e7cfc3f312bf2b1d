// Package stash parses STASHmaster files, the catalog of every diagnostic
// and prognostic quantity a UM model can write, and looks entries up by
// model, section and item.
//
// A STASHmaster record spans five lines, each starting with its line number
// and a '|' and holding '|' separated values:
//
//	1|    1 |    0 |    2 |U COMPNT OF WIND AFTER TIMESTEP     |
//	2|    2 |    0 |    1 |   18 |    2 |    1 |    2 |    0 |    0 |    0 |    0 |
//	3| 000000000000000000000000000000 | 00000000000000000001 |    1 |
//	4|    1 |    0 | -3  -3  -3  -3 -14 -14  -3  -3  -3 -99 |
//	5|    0 |   56 |    0 |   65 |    0 |    0 |    0 |    0 |    0 |
//
// Header lines ("H1|") and comments ("#") are ignored. Files are Latin-1.
package stash

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"os"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/arloliu/mule/errs"
)

// ModelAtmosphere is the model number of the atmosphere STASHmaster.
const ModelAtmosphere = 1

const endOfFileMark = "END OF FILE MARK"

const maxLineSize = 1 << 20

type key struct {
	model int
	code  int
}

// Catalog is a set of STASHmaster entries keyed by model and stash code.
// A Catalog is read-only after Parse and is safe for concurrent lookups.
type Catalog struct {
	Source  string
	entries map[key]*Entry
}

func newCatalog(source string) *Catalog {
	return &Catalog{Source: source, entries: make(map[key]*Entry)}
}

// Load parses the STASHmaster file at path.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stashmaster: %w", err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.Source = path

	return c, nil
}

// Parse reads STASHmaster records from r.
func Parse(r io.Reader) (*Catalog, error) {
	scanner := bufio.NewScanner(transform.NewReader(r, charmap.ISO8859_1.NewDecoder()))
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)

	c := newCatalog("")
	var (
		record []string
		next   = 1
		lineNo int
	)

	for scanner.Scan() {
		lineNo++
		n, body, ok := recordLine(scanner.Text())
		if !ok {
			continue
		}

		if n != next {
			// A record interrupted part way restarts at its first line.
			if n != 1 {
				return nil, fmt.Errorf("line %d: record line %d, want %d: %w", lineNo, n, next, errs.ErrCorruptRecord)
			}
			record = record[:0]
		}

		record = append(record, splitValues(body)...)
		next = n + 1
		if n < 5 {
			continue
		}

		entry, err := newEntry(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		record = record[:0]
		next = 1

		if entry.Name == endOfFileMark {
			continue
		}
		c.entries[key{entry.Model, entry.Code()}] = entry
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning stashmaster: %w", err)
	}
	if next != 1 {
		return nil, fmt.Errorf("incomplete record at end of input: %w", errs.ErrCorruptRecord)
	}

	return c, nil
}

// recordLine splits "3| a | b |" into 3 and " a | b |".
func recordLine(line string) (int, string, bool) {
	head, body, found := strings.Cut(line, "|")
	if !found {
		return 0, "", false
	}

	head = strings.TrimSpace(head)
	if len(head) != 1 || head[0] < '1' || head[0] > '5' {
		return 0, "", false
	}

	return int(head[0] - '0'), body, true
}

func splitValues(body string) []string {
	body = strings.TrimSuffix(strings.TrimRightFunc(body, isSpace), "|")
	parts := strings.Split(body, "|")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}

	return parts
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r'
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Add inserts or replaces an entry.
func (c *Catalog) Add(e *Entry) {
	c.entries[key{e.Model, e.Code()}] = e
}

// Lookup returns the entry for model, section and item.
func (c *Catalog) Lookup(model, section, item int) (*Entry, error) {
	return c.ByCode(model, section*1000+item)
}

// ByCode returns the entry for a five digit stash code.
func (c *Catalog) ByCode(model, code int) (*Entry, error) {
	e, ok := c.entries[key{model, code}]
	if !ok {
		return nil, fmt.Errorf("model %d stash code %05d: %w", model, code, errs.ErrNoEntry)
	}

	return e, nil
}

// BySection returns a catalog holding the entries of one section.
func (c *Catalog) BySection(section int) *Catalog {
	return c.filter(func(e *Entry) bool { return e.Section == section })
}

// ByItem returns a catalog holding the entries with the given item number.
func (c *Catalog) ByItem(item int) *Catalog {
	return c.filter(func(e *Entry) bool { return e.Item == item })
}

// ByRegex returns a catalog of the entries whose name matches expr,
// ignoring case.
func (c *Catalog) ByRegex(expr string) (*Catalog, error) {
	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return nil, err
	}

	return c.filter(func(e *Entry) bool { return re.MatchString(e.Name) }), nil
}

func (c *Catalog) filter(keep func(*Entry) bool) *Catalog {
	out := newCatalog(c.Source)
	for k, e := range c.entries {
		if keep(e) {
			out.entries[k] = e
		}
	}

	return out
}

// Entries returns every entry ordered by model then stash code.
func (c *Catalog) Entries() []*Entry {
	keys := slices.SortedFunc(maps.Keys(c.entries), func(a, b key) int {
		if a.model != b.model {
			return a.model - b.model
		}

		return a.code - b.code
	})

	out := make([]*Entry, len(keys))
	for i, k := range keys {
		out[i] = c.entries[k]
	}

	return out
}
