package toon

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type frameKind int

const (
	frameObject frameKind = iota
	frameList
	frameTabular
	framePlaceholder
)

// frame is one open container on the decoder stack. It owns its backing
// container and the indent level its children must occupy; popping a frame
// attaches the finished container to the frame below it (or to the root).
type frame struct {
	kind        frameKind
	key         string // attach key when the parent is an object frame
	childIndent int
	headerLine  int    // 1-based line of the opening line, for error reporting
	delimiter   string // active delimiter for children
	obj         *Object
	arr         []interface{}
	expect      int      // declared length for list/tabular frames
	fields      []string // tabular field names, in declared order
	item        interface{}
	filled      bool
}

type decoder struct {
	strict   bool
	limits   *limitState
	stack    []*frame
	root     interface{}
	rootSet  bool
	step     int // inferred indent step, 0 until the first indented line
	lastLine int
}

type header struct {
	key    string
	count  int
	delim  string
	fields []string // nil for non-tabular headers
	inline string   // inline values after the colon, "" when absent
}

func (d *decoder) decode(data string) (interface{}, error) {
	lines := strings.Split(data, "\n")
	for idx, raw := range lines {
		line := strings.TrimSuffix(raw, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		d.lastLine = idx + 1
		if err := d.processLine(line, idx+1); err != nil {
			return nil, err
		}
	}
	for len(d.stack) > 0 {
		if err := d.pop(d.lastLine); err != nil {
			return nil, err
		}
	}
	if !d.rootSet {
		return NewObject(), nil
	}
	return d.root, nil
}

func (d *decoder) processLine(line string, lineNo int) error {
	indent := 0
	for indent < len(line) && line[indent] == ' ' {
		indent++
	}
	if indent < len(line) && line[indent] == '\t' {
		return lineErrorf(lineNo, "tab character in indentation")
	}

	level := 0
	if indent > 0 {
		if d.step == 0 {
			d.step = indent
		}
		if indent%d.step != 0 && d.strict {
			return lineErrorf(lineNo, "indentation of %d spaces is not a multiple of the %d-space step", indent, d.step)
		}
		level = indent / d.step
	}
	if level > d.limits.maxDepth {
		return lineErrorf(lineNo, "maximum depth %d exceeded", d.limits.maxDepth)
	}
	content := line[indent:]

	// Finalize every frame the line outdents past, deepest first.
	for len(d.stack) > 0 && d.top().childIndent > level {
		if err := d.pop(lineNo); err != nil {
			return err
		}
	}

	for {
		if len(d.stack) == 0 {
			if level > 0 {
				if d.strict {
					return lineErrorf(lineNo, "unexpected indentation")
				}
				level = 0
			}
			break
		}
		top := d.top()
		if top.childIndent < level {
			if d.strict {
				return lineErrorf(lineNo, "unexpected indentation")
			}
			level = top.childIndent
		}
		if top.kind == frameTabular && top.childIndent == level {
			// A line at row indent is a data row when its first unquoted
			// delimiter precedes any unquoted colon (or no colon exists);
			// otherwise the tabular block is over and the line belongs to
			// whatever frame is underneath.
			colon, delim := unquotedPositions(content, top.delimiter[0])
			if colon == -1 || (delim != -1 && delim < colon) {
				return d.appendRow(top, content, lineNo)
			}
			if err := d.pop(lineNo); err != nil {
				return err
			}
			continue
		}
		break
	}

	return d.classify(content, level, lineNo)
}

func (d *decoder) classify(content string, level, lineNo int) error {
	if content[0] == '-' && (len(content) == 1 || content[1] == ' ') {
		return d.listItem(content, level, lineNo)
	}

	hdr, isHeader, err := d.parseHeader(content, lineNo)
	if err != nil {
		return err
	}
	if isHeader {
		if hdr.key == "" {
			top := d.top()
			if top == nil {
				if d.rootSet {
					return lineErrorf(lineNo, "multiple root values")
				}
				return d.applyHeader(hdr, level+1, "", lineNo)
			}
			if top.kind == framePlaceholder {
				if top.filled {
					return lineErrorf(lineNo, "multiple values for list item")
				}
				return d.applyHeader(hdr, level+1, "", lineNo)
			}
			return lineErrorf(lineNo, "missing key in array header")
		}
		if _, err := d.objectTop(level, lineNo); err != nil {
			return err
		}
		return d.applyHeader(hdr, level+1, hdr.key, lineNo)
	}

	colon, _ := unquotedPositions(content, 0)
	if colon == -1 {
		top := d.top()
		if top == nil {
			if d.rootSet {
				return lineErrorf(lineNo, "multiple root values")
			}
			v, err := d.parseValue(content, ",", lineNo)
			if err != nil {
				return err
			}
			d.root, d.rootSet = v, true
			return nil
		}
		switch top.kind {
		case framePlaceholder:
			v, err := d.parseValue(content, top.delimiter, lineNo)
			if err != nil {
				return err
			}
			return d.attach(v, "", lineNo)
		case frameList:
			return lineErrorf(lineNo, "list item must start with %q", "-")
		default:
			return lineErrorf(lineNo, "missing %q separator", ":")
		}
	}

	key, err := d.parseKeyToken(content[:colon], lineNo)
	if err != nil {
		return err
	}
	top, err := d.objectTop(level, lineNo)
	if err != nil {
		return err
	}
	rest := content[colon+1:]
	if rest == "" {
		return d.push(&frame{
			kind:        frameObject,
			key:         key,
			childIndent: level + 1,
			headerLine:  lineNo,
			delimiter:   top.delimiter,
			obj:         NewObject(),
		}, lineNo)
	}
	tok := rest
	if strings.HasPrefix(tok, " ") {
		tok = tok[1:]
	} else if d.strict {
		return lineErrorf(lineNo, "missing space after %q", ":")
	}
	v, err := d.parseValue(tok, top.delimiter, lineNo)
	if err != nil {
		return err
	}
	return d.attach(v, key, lineNo)
}

func (d *decoder) listItem(content string, level, lineNo int) error {
	top := d.top()
	if top == nil || top.kind != frameList {
		return lineErrorf(lineNo, "list item outside an array")
	}

	rest := ""
	if len(content) > 1 {
		rest = content[2:]
	}
	if strings.TrimSpace(rest) == "" {
		// Value deferred to the following line(s); an unfilled placeholder
		// finalizes as an empty object.
		return d.push(&frame{
			kind:        framePlaceholder,
			childIndent: level + 1,
			headerLine:  lineNo,
			delimiter:   top.delimiter,
		}, lineNo)
	}

	hdr, isHeader, err := d.parseHeader(rest, lineNo)
	if err != nil {
		return err
	}
	if isHeader {
		if hdr.key == "" {
			return d.applyHeader(hdr, level+1, "", lineNo)
		}
		// Object item whose first field is an array.
		if err := d.push(&frame{
			kind:        frameObject,
			childIndent: level + 1,
			headerLine:  lineNo,
			delimiter:   top.delimiter,
			obj:         NewObject(),
		}, lineNo); err != nil {
			return err
		}
		return d.applyHeader(hdr, level+1, hdr.key, lineNo)
	}

	colon, _ := unquotedPositions(rest, 0)
	if colon == -1 {
		v, err := d.parseValue(rest, top.delimiter, lineNo)
		if err != nil {
			return err
		}
		return d.attach(v, "", lineNo)
	}

	// Object item in compact form: the first field shares the item line.
	key, err := d.parseKeyToken(rest[:colon], lineNo)
	if err != nil {
		return err
	}
	if err := d.push(&frame{
		kind:        frameObject,
		childIndent: level + 1,
		headerLine:  lineNo,
		delimiter:   top.delimiter,
		obj:         NewObject(),
	}, lineNo); err != nil {
		return err
	}
	val := rest[colon+1:]
	if val == "" {
		return d.push(&frame{
			kind:        frameObject,
			key:         key,
			childIndent: level + 1,
			headerLine:  lineNo,
			delimiter:   top.delimiter,
			obj:         NewObject(),
		}, lineNo)
	}
	tok := val
	if strings.HasPrefix(tok, " ") {
		tok = tok[1:]
	} else if d.strict {
		return lineErrorf(lineNo, "missing space after %q", ":")
	}
	v, err := d.parseValue(tok, top.delimiter, lineNo)
	if err != nil {
		return err
	}
	return d.attach(v, key, lineNo)
}

// applyHeader pushes the frame a header opens, or attaches its inline values
// directly when the array is fully inlined.
func (d *decoder) applyHeader(hdr *header, childIndent int, key string, lineNo int) error {
	if err := d.limits.checkArrayLength(hdr.count); err != nil {
		return d.lineErr(lineNo, err)
	}

	if hdr.fields != nil {
		if hdr.inline != "" {
			return lineErrorf(lineNo, "tabular header cannot carry inline values")
		}
		return d.push(&frame{
			kind:        frameTabular,
			key:         key,
			childIndent: childIndent,
			headerLine:  lineNo,
			delimiter:   hdr.delim,
			expect:      hdr.count,
			fields:      hdr.fields,
			arr:         []interface{}{},
		}, lineNo)
	}

	if hdr.inline != "" {
		cells, err := splitQuoteAware(hdr.inline, hdr.delim, lineNo)
		if err != nil {
			return err
		}
		if err := d.limits.checkArrayLength(len(cells)); err != nil {
			return d.lineErr(lineNo, err)
		}
		values := make([]interface{}, 0, len(cells))
		for _, cell := range cells {
			v, err := d.parseValue(cell, hdr.delim, lineNo)
			if err != nil {
				return err
			}
			values = append(values, v)
		}
		if d.strict && len(values) != hdr.count {
			return lineErrorf(lineNo, "array length mismatch: expected %d, got %d", hdr.count, len(values))
		}
		return d.attach(values, key, lineNo)
	}

	return d.push(&frame{
		kind:        frameList,
		key:         key,
		childIndent: childIndent,
		headerLine:  lineNo,
		delimiter:   hdr.delim,
		expect:      hdr.count,
		arr:         []interface{}{},
	}, lineNo)
}

// parseHeader recognizes `key[n]:`-shaped lines, including the optional
// delimiter marker inside the brackets, the tabular field list, and inline
// values. Returns false when content is not header-shaped (a plain key-value
// line); malformed brackets are an error.
func (d *decoder) parseHeader(content string, lineNo int) (*header, bool, error) {
	var key string
	i := 0
	if content[0] == '"' {
		s, n, err := unquoteString(content)
		if err != nil {
			return nil, false, lineErrorf(lineNo, "%v", err)
		}
		if n >= len(content) || content[n] != '[' {
			return nil, false, nil
		}
		key = s
		i = n
	} else {
		bracket := strings.IndexByte(content, '[')
		if bracket == -1 {
			return nil, false, nil
		}
		colon := strings.IndexByte(content, ':')
		if colon != -1 && colon < bracket {
			return nil, false, nil
		}
		key = content[:bracket]
		if key != "" && !identifierRegex.MatchString(key) {
			return nil, false, lineErrorf(lineNo, "invalid key %q", key)
		}
		i = bracket
	}

	i++ // consume '['
	digits := i
	for i < len(content) && content[i] >= '0' && content[i] <= '9' {
		i++
	}
	if i == digits {
		return nil, false, lineErrorf(lineNo, "invalid array header: missing length")
	}
	count, err := strconv.Atoi(content[digits:i])
	if err != nil {
		return nil, false, lineErrorf(lineNo, "invalid array length %q", content[digits:i])
	}
	delim := ","
	if i < len(content) && (content[i] == ',' || content[i] == '|' || content[i] == '\t') {
		delim = string(content[i])
		i++
	}
	if i >= len(content) || content[i] != ']' {
		return nil, false, lineErrorf(lineNo, "invalid array header: missing %q", "]")
	}
	i++

	var fields []string
	if i < len(content) && content[i] == '{' {
		end := unquotedCloseBrace(content, i+1)
		if end == -1 {
			return nil, false, lineErrorf(lineNo, "invalid array header: missing %q", "}")
		}
		fieldsStr := content[i+1 : end]
		parts, err := splitQuoteAware(fieldsStr, delim, lineNo)
		if err != nil {
			return nil, false, err
		}
		if len(parts) == 1 && strings.TrimSpace(parts[0]) == "" {
			return nil, false, lineErrorf(lineNo, "invalid array header: empty field list")
		}
		fields = make([]string, 0, len(parts))
		for _, part := range parts {
			field, err := d.parseKeyToken(strings.TrimSpace(part), lineNo)
			if err != nil {
				return nil, false, err
			}
			if d.strict {
				for _, prev := range fields {
					if prev == field {
						return nil, false, lineErrorf(lineNo, "duplicate field %q", field)
					}
				}
			}
			fields = append(fields, field)
		}
		i = end + 1
	}

	if i >= len(content) || content[i] != ':' {
		return nil, false, lineErrorf(lineNo, "invalid array header: missing %q", ":")
	}
	inline := strings.TrimPrefix(content[i+1:], " ")
	if strings.TrimSpace(inline) == "" {
		inline = ""
	}

	if key != "" && !d.limits.keyAllowed(key) {
		return nil, false, lineErrorf(lineNo, "disallowed key %q", key)
	}
	return &header{key: key, count: count, delim: delim, fields: fields, inline: inline}, true, nil
}

func (d *decoder) appendRow(top *frame, content string, lineNo int) error {
	cells, err := splitQuoteAware(content, top.delimiter, lineNo)
	if err != nil {
		return err
	}
	if d.strict && len(cells) != len(top.fields) {
		return lineErrorf(lineNo, "row width mismatch: expected %d values, got %d", len(top.fields), len(cells))
	}
	if err := d.limits.checkArrayLength(len(top.arr) + 1); err != nil {
		return d.lineErr(lineNo, err)
	}
	row := NewObject()
	for i, field := range top.fields {
		if i >= len(cells) {
			break
		}
		v, err := d.parseValue(cells[i], top.delimiter, lineNo)
		if err != nil {
			return err
		}
		row.Set(field, v)
	}
	top.arr = append(top.arr, row)
	return nil
}

func (d *decoder) top() *frame {
	if len(d.stack) == 0 {
		return nil
	}
	return d.stack[len(d.stack)-1]
}

func (d *decoder) push(f *frame, lineNo int) error {
	if err := d.limits.checkDepth(len(d.stack) + 1); err != nil {
		return d.lineErr(lineNo, err)
	}
	d.stack = append(d.stack, f)
	return nil
}

// pop finalizes the deepest frame and attaches its container one level up.
func (d *decoder) pop(lineNo int) error {
	f := d.top()
	d.stack = d.stack[:len(d.stack)-1]
	var v interface{}
	switch f.kind {
	case frameObject:
		v = f.obj
	case frameList, frameTabular:
		if d.strict && len(f.arr) != f.expect {
			return lineErrorf(f.headerLine, "array length mismatch: expected %d, got %d", f.expect, len(f.arr))
		}
		v = f.arr
	case framePlaceholder:
		if f.filled {
			v = f.item
		} else {
			v = NewObject()
		}
	}
	return d.attach(v, f.key, lineNo)
}

func (d *decoder) attach(v interface{}, key string, lineNo int) error {
	if len(d.stack) == 0 {
		if d.rootSet {
			return lineErrorf(lineNo, "multiple root values")
		}
		d.root, d.rootSet = v, true
		return nil
	}
	top := d.top()
	switch top.kind {
	case frameObject:
		if d.strict && top.obj.Has(key) {
			return lineErrorf(lineNo, "duplicate key %q", key)
		}
		top.obj.Set(key, v)
	case frameList:
		if err := d.limits.checkArrayLength(len(top.arr) + 1); err != nil {
			return d.lineErr(lineNo, err)
		}
		top.arr = append(top.arr, v)
	case framePlaceholder:
		if top.filled {
			return lineErrorf(lineNo, "multiple values for list item")
		}
		top.item, top.filled = v, true
	case frameTabular:
		return lineErrorf(lineNo, "unexpected value in tabular array")
	}
	return nil
}

// objectTop returns the object frame a key-value line binds to, creating the
// root object lazily and morphing a pending placeholder into the list item's
// object.
func (d *decoder) objectTop(level, lineNo int) (*frame, error) {
	top := d.top()
	if top == nil {
		if d.rootSet {
			return nil, lineErrorf(lineNo, "multiple root values")
		}
		f := &frame{kind: frameObject, childIndent: level, headerLine: lineNo, delimiter: ",", obj: NewObject()}
		if err := d.push(f, lineNo); err != nil {
			return nil, err
		}
		return f, nil
	}
	switch top.kind {
	case frameObject:
		return top, nil
	case framePlaceholder:
		if top.filled {
			return nil, lineErrorf(lineNo, "multiple values for list item")
		}
		morphed := &frame{
			kind:        frameObject,
			key:         top.key,
			childIndent: top.childIndent,
			headerLine:  top.headerLine,
			delimiter:   top.delimiter,
			obj:         NewObject(),
		}
		d.stack[len(d.stack)-1] = morphed
		return morphed, nil
	case frameList:
		return nil, lineErrorf(lineNo, "list item must start with %q", "-")
	default:
		return nil, lineErrorf(lineNo, "unexpected content inside tabular array")
	}
}

// parseValue decodes one scalar token and charges it against the node budget.
func (d *decoder) parseValue(tok, delim string, lineNo int) (interface{}, error) {
	if err := d.limits.countNodes(1); err != nil {
		return nil, d.lineErr(lineNo, err)
	}
	t := strings.TrimSpace(tok)
	if t == "" {
		return "", nil
	}
	if t[0] == '"' {
		s, n, err := unquoteString(t)
		if err != nil {
			return nil, lineErrorf(lineNo, "%v", err)
		}
		if n != len(t) {
			return nil, lineErrorf(lineNo, "unexpected characters after closing quote")
		}
		return s, nil
	}
	switch t {
	case "null":
		return nil, nil
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	if numericRegex.MatchString(t) {
		if hasLeadingZeros(t) {
			if d.strict {
				return nil, lineErrorf(lineNo, "number %q has leading zeros", t)
			}
			return t, nil
		}
		f, err := strconv.ParseFloat(t, 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, lineErrorf(lineNo, "number %q is out of range", t)
		}
		return f, nil
	}
	if d.strict {
		if tok != t {
			return nil, lineErrorf(lineNo, "unquoted value %q has surrounding whitespace", tok)
		}
		if strings.Contains(t, delim) {
			return nil, lineErrorf(lineNo, "unquoted value %q contains the delimiter", t)
		}
	}
	return t, nil
}

// parseKeyToken decodes a key: either a quoted string or a bare identifier.
// The disallowed-key check here applies regardless of strict mode.
func (d *decoder) parseKeyToken(tok string, lineNo int) (string, error) {
	if tok == "" {
		return "", lineErrorf(lineNo, "empty key")
	}
	var key string
	if tok[0] == '"' {
		s, n, err := unquoteString(tok)
		if err != nil {
			return "", lineErrorf(lineNo, "%v", err)
		}
		if n != len(tok) {
			return "", lineErrorf(lineNo, "invalid key %q", tok)
		}
		key = s
	} else {
		if !identifierRegex.MatchString(tok) {
			return "", lineErrorf(lineNo, "invalid key %q", tok)
		}
		key = tok
	}
	if !d.limits.keyAllowed(key) {
		return "", lineErrorf(lineNo, "disallowed key %q", key)
	}
	return key, nil
}

func (d *decoder) lineErr(lineNo int, err error) error {
	if e, ok := err.(*Error); ok && e.Line == 0 {
		return &Error{Line: lineNo, Message: e.Message}
	}
	return err
}

// hasLeadingZeros reports whether the integer part of a numeric token has
// leading zeros, so "007", "007.5" and "007e1" are all caught while "0.5"
// and "10.07" pass.
func hasLeadingZeros(t string) bool {
	t = strings.TrimPrefix(t, "-")
	if i := strings.IndexAny(t, ".eE"); i != -1 {
		t = t[:i]
	}
	return leadingZeroRegex.MatchString(t)
}

// unquoteString decodes a leading double-quoted span of s, returning the
// decoded value and the number of bytes consumed including both quotes.
func unquoteString(s string) (string, int, error) {
	var b strings.Builder
	i := 1
	for i < len(s) {
		switch s[i] {
		case '"':
			return b.String(), i + 1, nil
		case '\\':
			if i+1 >= len(s) {
				return "", 0, fmt.Errorf("unterminated escape sequence")
			}
			switch s[i+1] {
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			default:
				return "", 0, fmt.Errorf("invalid escape sequence \\%c", s[i+1])
			}
			i += 2
		default:
			b.WriteByte(s[i])
			i++
		}
	}
	return "", 0, fmt.Errorf("unterminated quoted string")
}

// splitQuoteAware splits s on the single-character delimiter, treating
// double-quoted spans (with backslash escapes inside) as atomic.
func splitQuoteAware(s, delim string, lineNo int) ([]string, error) {
	target := delim[0]
	var parts []string
	start := 0
	inQuote := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inQuote {
			if c == '\\' {
				i++
				continue
			}
			if c == '"' {
				inQuote = false
			}
			continue
		}
		switch c {
		case '"':
			inQuote = true
		case target:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	if inQuote {
		return nil, lineErrorf(lineNo, "unterminated quoted string")
	}
	return append(parts, s[start:]), nil
}

// unquotedPositions returns the index of the first colon and the first
// delimiter occurrence outside quoted spans (-1 when absent). Pass delim 0
// to scan for the colon alone.
func unquotedPositions(s string, delim byte) (colon, delimPos int) {
	colon, delimPos = -1, -1
	inQuote := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inQuote {
			if c == '\\' {
				i++
				continue
			}
			if c == '"' {
				inQuote = false
			}
			continue
		}
		switch {
		case c == '"':
			inQuote = true
		case c == ':' && colon == -1:
			colon = i
		case delim != 0 && c == delim && delimPos == -1:
			delimPos = i
		}
		if colon != -1 && (delim == 0 || delimPos != -1) {
			return
		}
	}
	return
}

// unquotedCloseBrace finds the first '}' outside quoted spans at or after
// from, or -1.
func unquotedCloseBrace(s string, from int) int {
	inQuote := false
	for i := from; i < len(s); i++ {
		c := s[i]
		if inQuote {
			if c == '\\' {
				i++
				continue
			}
			if c == '"' {
				inQuote = false
			}
			continue
		}
		switch c {
		case '"':
			inQuote = true
		case '}':
			return i
		}
	}
	return -1
}
