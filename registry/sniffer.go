package registry

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidSnifferRule = errors.New("invalid sniffer rule")

// ParsedSnifferRule is the parsed form of a [SnifferRule].
//
// A rule consists of a priority between 0 and 1 followed by one or more pattern groups:
//
//	0.50 [0:16] ('%PDF-' | 0x25504446) ('x' & 0xff)
//
// Every group has to match for the rule to match. A group matches if any of its patterns is
// found at an offset within the group's range. A range of [n] means offset n, [a:b] means any
// offset from a up to and including b, and no range means offset 0.
// Patterns are quoted strings, using ' or ", or hexadecimal bytes prefixed with 0x.
// A pattern can be followed by & and a mask of the same length.
// A group that starts with -i matches its patterns ignoring ASCII case:
//
//	0.40 [0:64] ( -i "<HTML" | "<SCRIPT" )
type ParsedSnifferRule struct {
	Priority float64
	Groups   []PatternGroup
}

type PatternGroup struct {
	Start int
	End   int

	// CaseInsensitive applies to every pattern of the group.
	CaseInsensitive bool

	Patterns []Pattern
}

type Pattern struct {
	Value []byte

	// Mask is nil or has the same length as Value.
	Mask []byte
}

type snifferParser struct {
	rule string
	pos  int
}

// ParseSnifferRule parses rule. Errors wrap [ErrInvalidSnifferRule].
func ParseSnifferRule(rule string) (ParsedSnifferRule, error) {
	p := &snifferParser{rule: rule}
	parsed, err := p.parse()
	if err != nil {
		return ParsedSnifferRule{}, fmt.Errorf("%w at offset %d: %w", ErrInvalidSnifferRule, p.pos, err)
	}

	return parsed, nil
}

func (p *snifferParser) parse() (ParsedSnifferRule, error) {
	var result ParsedSnifferRule

	p.skipSpace()
	start := p.pos
	for p.pos < len(p.rule) && strings.IndexByte("0123456789.", p.rule[p.pos]) >= 0 {
		p.pos++
	}
	if start == p.pos {
		return result, errors.New("expected priority")
	}

	text := p.rule[start:p.pos]
	priority, err := strconv.ParseFloat(text, 64)
	if err != nil || priority < 0 || priority > 1 {
		p.pos = start
		return result, fmt.Errorf("priority %q is not between 0 and 1", text)
	}
	result.Priority = priority

	for {
		p.skipSpace()
		if p.pos == len(p.rule) {
			break
		}

		group, err := p.parseGroup()
		if err != nil {
			return result, err
		}
		result.Groups = append(result.Groups, group)
	}

	if len(result.Groups) == 0 {
		return result, errors.New("expected at least one pattern group")
	}

	return result, nil
}

func (p *snifferParser) parseGroup() (PatternGroup, error) {
	var group PatternGroup

	if p.peek() == '[' {
		p.pos++
		start, end, err := p.parseRange()
		if err != nil {
			return group, err
		}
		group.Start = start
		group.End = end
		p.skipSpace()
	}

	if p.peek() != '(' {
		return group, errors.New("expected '('")
	}
	p.pos++

	p.skipSpace()
	if strings.HasPrefix(p.rule[p.pos:], "-i") {
		p.pos += 2
		group.CaseInsensitive = true
	}

	for {
		p.skipSpace()
		pattern, err := p.parsePattern()
		if err != nil {
			return group, err
		}
		group.Patterns = append(group.Patterns, pattern)

		p.skipSpace()
		switch p.peek() {
		case '|':
			p.pos++
			continue
		case ')':
			p.pos++
			return group, nil
		default:
			return group, errors.New("expected '|' or ')'")
		}
	}
}

func (p *snifferParser) parseRange() (int, int, error) {
	p.skipSpace()
	start, err := p.parseInt()
	if err != nil {
		return 0, 0, err
	}
	end := start

	p.skipSpace()
	if p.peek() == ':' {
		p.pos++
		p.skipSpace()
		end, err = p.parseInt()
		if err != nil {
			return 0, 0, err
		}
		p.skipSpace()
	}

	if p.peek() != ']' {
		return 0, 0, errors.New("expected ']'")
	}
	p.pos++

	if end < start {
		return 0, 0, fmt.Errorf("range end %d is before start %d", end, start)
	}

	return start, end, nil
}

func (p *snifferParser) parseInt() (int, error) {
	start := p.pos
	for p.pos < len(p.rule) && '0' <= p.rule[p.pos] && p.rule[p.pos] <= '9' {
		p.pos++
	}
	if start == p.pos {
		return 0, errors.New("expected offset")
	}

	return strconv.Atoi(p.rule[start:p.pos])
}

func (p *snifferParser) parsePattern() (Pattern, error) {
	var pattern Pattern

	value, err := p.parseValue()
	if err != nil {
		return pattern, err
	}
	if len(value) == 0 {
		return pattern, errors.New("empty pattern")
	}
	pattern.Value = value

	p.skipSpace()
	if p.peek() == '&' {
		p.pos++
		p.skipSpace()
		mask, err := p.parseValue()
		if err != nil {
			return pattern, err
		}
		if len(mask) != len(value) {
			return pattern, fmt.Errorf("mask length %d differs from pattern length %d", len(mask), len(value))
		}
		pattern.Mask = mask
	}

	return pattern, nil
}

func (p *snifferParser) parseValue() ([]byte, error) {
	switch c := p.peek(); {
	case c == '\'' || c == '"':
		return p.parseQuoted(c)
	case strings.HasPrefix(p.rule[p.pos:], "0x"):
		p.pos += 2
		start := p.pos
		for p.pos < len(p.rule) && isHexDigit(p.rule[p.pos]) {
			p.pos++
		}
		decoded, err := hex.DecodeString(p.rule[start:p.pos])
		if err != nil {
			return nil, fmt.Errorf("bad hex pattern: %w", err)
		}
		return decoded, nil
	default:
		return nil, errors.New("expected quoted string or 0x hex pattern")
	}
}

func (p *snifferParser) parseQuoted(quote byte) ([]byte, error) {
	p.pos++
	var value []byte

	for p.pos < len(p.rule) {
		c := p.rule[p.pos]
		switch {
		case c == quote:
			p.pos++
			return value, nil
		case c == '\\':
			p.pos++
			if p.pos == len(p.rule) {
				return nil, errors.New("unterminated escape sequence")
			}
			escaped, err := p.parseEscape()
			if err != nil {
				return nil, err
			}
			value = append(value, escaped)
		default:
			value = append(value, c)
			p.pos++
		}
	}

	return nil, errors.New("unterminated string")
}

func (p *snifferParser) parseEscape() (byte, error) {
	c := p.rule[p.pos]
	p.pos++

	switch c {
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	case 'x':
		if p.pos+2 > len(p.rule) || !isHexDigit(p.rule[p.pos]) || !isHexDigit(p.rule[p.pos+1]) {
			return 0, errors.New(`\x must be followed by two hex digits`)
		}
		decoded, _ := hex.DecodeString(p.rule[p.pos : p.pos+2])
		p.pos += 2
		return decoded[0], nil
	default:
		return c, nil
	}
}

func (p *snifferParser) peek() byte {
	if p.pos >= len(p.rule) {
		return 0
	}

	return p.rule[p.pos]
}

func (p *snifferParser) skipSpace() {
	for p.pos < len(p.rule) && strings.IndexByte(" \t\r\n", p.rule[p.pos]) >= 0 {
		p.pos++
	}
}

func isHexDigit(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}
