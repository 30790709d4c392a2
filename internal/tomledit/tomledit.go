// Package tomledit provides targeted edits over TOML documents without
// reserializing them. A Document keeps the raw text as positioned lines and
// rewrites only the lines a patch touches, so comments, blank lines, key
// ordering, and unrecognized fields survive every edit. Validation of the
// result is the caller's job (peniche re-parses after patching).
package tomledit

import (
	"errors"
	"fmt"
	"strings"
)

// Edit errors.
var (
	ErrTableNotFound = errors.New("table not found in document")
	ErrKeyNotFound   = errors.New("key not found in table")
	ErrNotAnArray    = errors.New("value is not an array")
	ErrElementExists = errors.New("array element already present")
	ErrElementGone   = errors.New("array element not present")
)

// Document is a TOML file held as positioned lines.
type Document struct {
	lines []string
}

// Parse builds a Document from raw TOML text. No syntax validation happens
// here; malformed input simply yields edits that fail to locate their target.
func Parse(data []byte) *Document {
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return &Document{}
	}
	return &Document{lines: strings.Split(text, "\n")}
}

// Bytes renders the document back to TOML text.
func (d *Document) Bytes() []byte {
	if len(d.lines) == 0 {
		return []byte{}
	}
	return []byte(strings.Join(d.lines, "\n") + "\n")
}

// headerName returns the table name if the line is a [table] header.
func headerName(line string) (string, bool) {
	s := strings.TrimSpace(line)
	if !strings.HasPrefix(s, "[") || strings.HasPrefix(s, "[[") {
		return "", false
	}
	end := strings.Index(s, "]")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(s[1:end]), true
}

// tableRange returns the half-open line range [start, end) of the named
// table's body, excluding the header itself. The empty name addresses the
// root table (lines before the first header).
func (d *Document) tableRange(table string) (start, end int, ok bool) {
	start = -1
	if table == "" {
		start = 0
		ok = true
	}
	for i, line := range d.lines {
		name, isHeader := headerName(line)
		if !isHeader {
			continue
		}
		if start >= 0 {
			return start, i, true
		}
		if name == table {
			start = i + 1
			ok = true
		}
	}
	if !ok {
		return 0, 0, false
	}
	return start, len(d.lines), true
}

// matchesKey reports whether the line assigns the given key, accepting both
// bare and quoted key forms.
func matchesKey(line, key string) bool {
	s := strings.TrimSpace(line)
	for _, form := range []string{key, `"` + key + `"`} {
		if rest, found := strings.CutPrefix(s, form); found {
			rest = strings.TrimLeft(rest, " \t")
			if strings.HasPrefix(rest, "=") {
				return true
			}
		}
	}
	return false
}

// keyLine locates the line assigning key within table.
func (d *Document) keyLine(table, key string) (int, bool) {
	start, end, ok := d.tableRange(table)
	if !ok {
		return 0, false
	}
	for i := start; i < end; i++ {
		if matchesKey(d.lines[i], key) {
			return i, true
		}
	}
	return 0, false
}

// HasTable reports whether the named table exists.
func (d *Document) HasTable(table string) bool {
	_, _, ok := d.tableRange(table)
	return ok
}

// HasKey reports whether table contains an assignment for key.
func (d *Document) HasKey(table, key string) bool {
	_, ok := d.keyLine(table, key)
	return ok
}

// EnsureTable appends a [table] header if the table does not exist yet.
func (d *Document) EnsureTable(table string) {
	if d.HasTable(table) {
		return
	}
	if len(d.lines) > 0 && strings.TrimSpace(d.lines[len(d.lines)-1]) != "" {
		d.lines = append(d.lines, "")
	}
	d.lines = append(d.lines, "["+table+"]")
}

// SetRaw assigns key = raw in table, replacing an existing assignment in
// place or appending to the table body. raw must be valid TOML value text.
func (d *Document) SetRaw(table, key, raw string) {
	if i, ok := d.keyLine(table, key); ok {
		indent := d.lines[i][:len(d.lines[i])-len(strings.TrimLeft(d.lines[i], " \t"))]
		d.lines[i] = indent + key + " = " + raw
		return
	}
	d.EnsureTable(table)
	_, end, _ := d.tableRange(table)
	// Insert after the last non-blank line of the table body so trailing
	// blank separators stay at the table boundary.
	insert := end
	start, _, _ := d.tableRange(table)
	for insert > start && strings.TrimSpace(d.lines[insert-1]) == "" {
		insert--
	}
	d.lines = append(d.lines[:insert], append([]string{key + " = " + raw}, d.lines[insert:]...)...)
}

// SetString assigns key = "value" in table.
func (d *Document) SetString(table, key, value string) {
	d.SetRaw(table, key, fmt.Sprintf("%q", value))
}

// RemoveKey deletes the assignment of key from table. Multi-line array
// values are removed together with their closing bracket.
func (d *Document) RemoveKey(table, key string) error {
	i, ok := d.keyLine(table, key)
	if !ok {
		if !d.HasTable(table) {
			return fmt.Errorf("%w: [%s]", ErrTableNotFound, table)
		}
		return fmt.Errorf("%w: %s.%s", ErrKeyNotFound, table, key)
	}
	end := i
	if j, multi := d.arrayEnd(i); multi {
		end = j
	}
	d.lines = append(d.lines[:i], d.lines[end+1:]...)
	return nil
}

// RemoveTable deletes a [table] header and its body.
func (d *Document) RemoveTable(table string) error {
	start, end, ok := d.tableRange(table)
	if !ok || start == 0 {
		return fmt.Errorf("%w: [%s]", ErrTableNotFound, table)
	}
	// start-1 is the header line. Also drop one preceding blank separator.
	from := start - 1
	if from > 0 && strings.TrimSpace(d.lines[from-1]) == "" {
		from--
	}
	d.lines = append(d.lines[:from], d.lines[end:]...)
	return nil
}

// arrayEnd returns the index of the line closing an array assignment that
// starts at line i, and whether the array spans multiple lines.
func (d *Document) arrayEnd(i int) (int, bool) {
	if depth := bracketDepth(d.lines[i]); depth <= 0 {
		return i, false
	}
	depth := 0
	for j := i; j < len(d.lines); j++ {
		depth += bracketDepth(d.lines[j])
		if depth <= 0 {
			return j, j != i
		}
	}
	return len(d.lines) - 1, true
}

// bracketDepth counts net unclosed square brackets outside string literals
// and comments.
func bracketDepth(line string) int {
	depth := 0
	inString := false
	for _, r := range line {
		switch {
		case inString:
			if r == '"' {
				inString = false
			}
		case r == '"':
			inString = true
		case r == '#':
			return depth
		case r == '[':
			depth++
		case r == ']':
			depth--
		}
	}
	return depth
}

// unquote strips surrounding double quotes from a TOML string element.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// splitElements splits inline array content on top-level commas, dropping
// anything after a comment marker.
func splitElements(inner string) []string {
	var elems []string
	depth := 0
	inString := false
	start := 0
	limit := len(inner)
scan:
	for i, r := range inner {
		switch {
		case inString:
			if r == '"' {
				inString = false
			}
		case r == '#':
			limit = i
			break scan
		case r == '"':
			inString = true
		case r == '[' || r == '{':
			depth++
		case r == ']' || r == '}':
			depth--
		case r == ',' && depth == 0:
			elems = append(elems, inner[start:i])
			start = i + 1
		}
	}
	if rest := strings.TrimSpace(inner[start:limit]); rest != "" {
		elems = append(elems, rest)
	}
	for i := range elems {
		elems[i] = strings.TrimSpace(elems[i])
	}
	return elems
}

// AppendToArray adds element (raw TOML, e.g. a quoted string) to the array
// assigned to key in table. Fails with ErrElementExists when the element is
// already present.
func (d *Document) AppendToArray(table, key, element string) error {
	elems, layout, err := d.readArray(table, key)
	if err != nil {
		return err
	}
	for _, e := range elems {
		if unquote(e) == unquote(element) {
			return fmt.Errorf("%w: %s", ErrElementExists, element)
		}
	}
	elems = append(elems, element)
	d.writeArray(layout, key, elems)
	return nil
}

// RemoveFromArray drops element from the array assigned to key in table.
// Fails with ErrElementGone when the element is not present.
func (d *Document) RemoveFromArray(table, key, element string) error {
	elems, layout, err := d.readArray(table, key)
	if err != nil {
		return err
	}
	kept := elems[:0]
	removed := false
	for _, e := range elems {
		if !removed && unquote(e) == unquote(element) {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	if !removed {
		return fmt.Errorf("%w: %s", ErrElementGone, element)
	}
	d.writeArray(layout, key, kept)
	return nil
}

// arrayLayout captures where an array assignment sits so writeArray can
// rebuild it in place, keeping indentation and any trailing comment.
type arrayLayout struct {
	doc       *Document
	first     int
	last      int
	indent    string
	multiline bool
	suffix    string
}

func (d *Document) readArray(table, key string) ([]string, arrayLayout, error) {
	i, ok := d.keyLine(table, key)
	if !ok {
		if !d.HasTable(table) {
			return nil, arrayLayout{}, fmt.Errorf("%w: [%s]", ErrTableNotFound, table)
		}
		return nil, arrayLayout{}, fmt.Errorf("%w: %s.%s", ErrKeyNotFound, table, key)
	}

	last, multi := d.arrayEnd(i)
	line := d.lines[i]
	indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
	open := strings.Index(line, "[")
	if open < 0 {
		return nil, arrayLayout{}, fmt.Errorf("%w: %s.%s", ErrNotAnArray, table, key)
	}

	layout := arrayLayout{doc: d, first: i, last: last, indent: indent, multiline: multi}

	if !multi {
		closeIdx := closingBracket(line, open)
		if closeIdx < 0 {
			return nil, arrayLayout{}, fmt.Errorf("%w: %s.%s", ErrNotAnArray, table, key)
		}
		layout.suffix = line[closeIdx+1:]
		return splitElements(line[open+1 : closeIdx]), layout, nil
	}

	var elems []string
	elems = append(elems, splitElements(line[open+1:])...)
	for j := i + 1; j < last; j++ {
		elems = append(elems, splitElements(d.lines[j])...)
	}
	closing := d.lines[last]
	closeIdx := strings.Index(closing, "]")
	elems = append(elems, splitElements(closing[:closeIdx])...)
	layout.suffix = closing[closeIdx+1:]
	return elems, layout, nil
}

// closingBracket finds the index of the bracket closing the array opened at
// index open, ignoring brackets inside strings and comments.
func closingBracket(line string, open int) int {
	depth := 0
	inString := false
	for i := open; i < len(line); i++ {
		switch {
		case inString:
			if line[i] == '"' {
				inString = false
			}
		case line[i] == '"':
			inString = true
		case line[i] == '#':
			return -1
		case line[i] == '[':
			depth++
		case line[i] == ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func (d *Document) writeArray(l arrayLayout, key string, elems []string) {
	var repl []string
	if l.multiline {
		repl = append(repl, l.indent+key+" = [")
		for _, e := range elems {
			repl = append(repl, l.indent+"    "+e+",")
		}
		repl = append(repl, l.indent+"]"+l.suffix)
	} else {
		repl = []string{l.indent + key + " = [" + strings.Join(elems, ", ") + "]" + l.suffix}
	}
	d.lines = append(d.lines[:l.first], append(repl, d.lines[l.last+1:]...)...)
}
