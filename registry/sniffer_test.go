package registry

import (
	"errors"
	"github.com/google/go-cmp/cmp"
	"testing"
)

func TestParseSnifferRule(t *testing.T) {
	got, err := ParseSnifferRule(`0.50 [0:16] ('%PDF-' | 0x25504446) ("a\x00\n" & 0xff00ff)`)
	if err != nil {
		t.Fatal(err)
	}

	want := ParsedSnifferRule{
		Priority: 0.5,
		Groups: []PatternGroup{
			{
				Start: 0,
				End:   16,
				Patterns: []Pattern{
					{Value: []byte("%PDF-")},
					{Value: []byte{0x25, 0x50, 0x44, 0x46}},
				},
			},
			{
				Patterns: []Pattern{
					{Value: []byte{'a', 0, '\n'}, Mask: []byte{0xff, 0x00, 0xff}},
				},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseSnifferRule() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSnifferRuleCaseInsensitive(t *testing.T) {
	got, err := ParseSnifferRule(`0.40 [0:64]( -i "<HTML" | "<SCRIPT" ) (-i'x')`)
	if err != nil {
		t.Fatal(err)
	}

	want := ParsedSnifferRule{
		Priority: 0.4,
		Groups: []PatternGroup{
			{
				End:             64,
				CaseInsensitive: true,
				Patterns:        []Pattern{{Value: []byte("<HTML")}, {Value: []byte("<SCRIPT")}},
			},
			{
				CaseInsensitive: true,
				Patterns:        []Pattern{{Value: []byte("x")}},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseSnifferRule() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSnifferRuleSingleOffset(t *testing.T) {
	got, err := ParseSnifferRule("1 [4] ('ftyp')")
	if err != nil {
		t.Fatal(err)
	}

	if got.Groups[0].Start != 4 || got.Groups[0].End != 4 {
		t.Errorf("range = [%d:%d], want [4:4]", got.Groups[0].Start, got.Groups[0].End)
	}
}

func TestParseSnifferRuleInvalid(t *testing.T) {
	invalid := []string{
		"",
		"('abc')",
		"1.5 ('abc')",
		"0.5",
		"0.5 'abc'",
		"0.5 ('abc'",
		"0.5 ('abc",
		"0.5 ('')",
		"0.5 [10:2] ('abc')",
		"0.5 [1: ('abc')",
		"0.5 ('abc' & 0xff)",
		"0.5 (0xabc)",
		`0.5 ('\x4')`,
		"0.5 (abc)",
		"0.5 (-i)",
		"0.5 ('a' -i)",
	}

	for _, rule := range invalid {
		_, err := ParseSnifferRule(rule)
		if !errors.Is(err, ErrInvalidSnifferRule) {
			t.Errorf("ParseSnifferRule(%q) error = %v, want ErrInvalidSnifferRule", rule, err)
		}
	}
}
