package model

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// Tuple is a parenthesized literal sequence such as (1, 2).
type Tuple []any

// ParseLiteral evaluates s as a restricted literal: integers, floats,
// True/False/None, single- or double-quoted strings, and lists or tuples of
// those. It never evaluates names or expressions. The boolean reports
// whether s was a complete literal.
func ParseLiteral(s string) (any, bool) {
	p := &literalParser{src: strings.TrimSpace(s)}
	if p.src == "" {
		return nil, false
	}
	v, ok := p.value()
	if !ok {
		return nil, false
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, false
	}
	return v, true
}

// EvalArg returns the literal value of a textual argument, or the argument
// itself when it is not text or not a valid literal.
func EvalArg(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	if lit, ok := ParseLiteral(s); ok {
		return lit
	}
	return v
}

type literalParser struct {
	src string
	pos int
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\n') {
		p.pos++
	}
}

func (p *literalParser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *literalParser) value() (any, bool) {
	p.skipSpace()
	switch c := p.peek(); {
	case c == '[':
		p.pos++
		items, ok := p.items(']')
		return items, ok
	case c == '(':
		return p.tuple()
	case c == '\'' || c == '"':
		return p.str(c)
	case c == '-' || c == '+':
		p.pos++
		p.skipSpace()
		v, ok := p.number()
		if !ok {
			return nil, false
		}
		if c == '-' {
			return negate(v), true
		}
		return v, true
	case c >= '0' && c <= '9' || c == '.':
		return p.number()
	case isIdentStart(c):
		return p.keyword()
	}
	return nil, false
}

// items parses comma-separated values up to the closing delimiter.
// A trailing comma is allowed.
func (p *literalParser) items(closing byte) ([]any, bool) {
	out := []any{}
	for {
		p.skipSpace()
		if p.peek() == closing {
			p.pos++
			return out, true
		}
		v, ok := p.value()
		if !ok {
			return nil, false
		}
		out = append(out, v)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case closing:
			p.pos++
			return out, true
		default:
			return nil, false
		}
	}
}

// tuple parses "()", "(x,)", "(x, y, ...)" or a parenthesized value "(x)".
func (p *literalParser) tuple() (any, bool) {
	p.pos++
	p.skipSpace()
	if p.peek() == ')' {
		p.pos++
		return Tuple{}, true
	}
	first, ok := p.value()
	if !ok {
		return nil, false
	}
	p.skipSpace()
	switch p.peek() {
	case ')':
		p.pos++
		return first, true
	case ',':
		p.pos++
		rest, ok := p.items(')')
		if !ok {
			return nil, false
		}
		return append(Tuple{first}, rest...), true
	}
	return nil, false
}

func (p *literalParser) str(quote byte) (any, bool) {
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == quote:
			p.pos++
			return b.String(), true
		case c == '\\' && p.pos+1 < len(p.src):
			p.pos++
			switch e := p.src[p.pos]; e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\', '\'', '"':
				b.WriteByte(e)
			default:
				b.WriteByte('\\')
				b.WriteByte(e)
			}
		case c == '\n':
			return nil, false
		default:
			b.WriteByte(c)
		}
		p.pos++
	}
	return nil, false
}

func (p *literalParser) number() (any, bool) {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if isNumberByte(c) {
			p.pos++
			continue
		}
		// exponent sign, as in 1e-5
		if (c == '-' || c == '+') && p.pos > start && (p.src[p.pos-1] == 'e' || p.src[p.pos-1] == 'E') && !isHexToken(p.src[start:p.pos]) {
			p.pos++
			continue
		}
		break
	}
	tok := p.src[start:p.pos]
	if tok == "" || tok == "." {
		return nil, false
	}
	if !strings.ContainsAny(tok, ".eE") || isHexToken(tok) {
		if len(tok) > 1 && tok[0] == '0' && unicode.IsDigit(rune(tok[1])) && strings.Trim(tok, "0_") != "" {
			return nil, false
		}
		if n, err := strconv.ParseInt(tok, 0, 64); err == nil {
			return int(n), true
		}
		return nil, false
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return nil, false
	}
	return f, true
}

func (p *literalParser) keyword() (any, bool) {
	start := p.pos
	for p.pos < len(p.src) && (isIdentStart(p.src[p.pos]) || unicode.IsDigit(rune(p.src[p.pos]))) {
		p.pos++
	}
	switch p.src[start:p.pos] {
	case "True":
		return true, true
	case "False":
		return false, true
	case "None":
		return nil, true
	}
	return nil, false
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNumberByte(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '.' || c == '_'
}

func isHexToken(tok string) bool {
	return len(tok) > 1 && tok[0] == '0' && (tok[1] == 'x' || tok[1] == 'X')
}

func negate(v any) any {
	switch n := v.(type) {
	case int:
		return -n
	case float64:
		return -n
	}
	return v
}

// FormatValue renders v the way the description language prints literals:
// strings are single-quoted, nil is None, booleans are True/False, floats
// always carry a fraction or exponent, lists use brackets and tuples use
// parentheses.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case bool:
		if x {
			return "True"
		}
		return "False"
	case string:
		return quoteString(x)
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case []any:
		return "[" + joinValues(x) + "]"
	case Tuple:
		if len(x) == 1 {
			return "(" + FormatValue(x[0]) + ",)"
		}
		return "(" + joinValues(x) + ")"
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = quoteString(k) + ": " + FormatValue(x[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	if n, ok := asInt(v); ok {
		return strconv.Itoa(n)
	}
	return fmt.Sprint(v)
}

// FormatArgs renders an argument list, e.g. [64, 3, 'nearest'].
func FormatArgs(args []any) string {
	return "[" + joinValues(args) + "]"
}

func joinValues(vs []any) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = FormatValue(v)
	}
	return strings.Join(parts, ", ")
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case f == math.Trunc(f) && math.Abs(f) < 1e16:
		return strconv.FormatFloat(f, 'f', -1, 64) + ".0"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func quoteString(s string) string {
	quote := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}
	var b strings.Builder
	b.WriteByte(quote)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case rune(quote):
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(quote)
	return b.String()
}
