package model

import (
	"reflect"
	"testing"
)

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"3", 3},
		{" 42 ", 42},
		{"-3", -3},
		{"+7", 7},
		{"0", 0},
		{"1_000", 1000},
		{"0x10", 16},
		{"3.5", 3.5},
		{".5", 0.5},
		{"1e-3", 0.001},
		{"2E+2", 200.0},
		{"True", true},
		{"False", false},
		{"None", nil},
		{"'nearest'", "nearest"},
		{`"it's"`, "it's"},
		{`'a\'b'`, "a'b"},
		{"[]", []any{}},
		{"[1, 2]", []any{1, 2}},
		{"[1, 2,]", []any{1, 2}},
		{"[1, [2, 3], 'x', None]", []any{1, []any{2, 3}, "x", nil}},
		{"()", Tuple{}},
		{"(1,)", Tuple{1}},
		{"(1, 2.5)", Tuple{1, 2.5}},
		{"(7)", 7},
		{"[(1, 2), (3, 4)]", []any{Tuple{1, 2}, Tuple{3, 4}}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLiteral(tt.in)
			if !ok {
				t.Fatalf("ParseLiteral(%q) failed", tt.in)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseLiteral(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseLiteral_Rejects(t *testing.T) {
	for _, in := range []string{
		"",
		"nearest",
		"nn.Upsample",
		"2*3",
		"1 + 1",
		"[1, 2",
		"(1, 2",
		"'open",
		"__import__('os').system('ls')",
		"010",
		"1.2.3",
		"12abc",
		"True False",
		"inf",
		"-",
		"{'a': 1}",
	} {
		t.Run(in, func(t *testing.T) {
			if v, ok := ParseLiteral(in); ok {
				t.Errorf("ParseLiteral(%q) = %#v, want failure", in, v)
			}
		})
	}
}

func TestEvalArg(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"numeric text", "128", 128},
		{"list text", "[1, 2]", []any{1, 2}},
		{"plain text kept", "nearest", "nearest"},
		{"expression kept", "nc*3", "nc*3"},
		{"int untouched", 5, 5},
		{"list untouched", []any{"1"}, []any{"1"}},
		{"nil untouched", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvalArg(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("EvalArg(%#v) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "None"},
		{"true", true, "True"},
		{"false", false, "False"},
		{"int", 3, "3"},
		{"int64", int64(-4), "-4"},
		{"float", 0.5, "0.5"},
		{"whole float", 2.0, "2.0"},
		{"small float", 1e-05, "1e-05"},
		{"string", "nearest", "'nearest'"},
		{"string with quote", "it's", `"it's"`},
		{"string with both quotes", `a'b"c`, `'a\'b"c'`},
		{"list", []any{1, "a", nil}, "[1, 'a', None]"},
		{"nested list", []any{[]any{10, 13}, 2}, "[[10, 13], 2]"},
		{"single tuple", Tuple{1}, "(1,)"},
		{"tuple", Tuple{1, 2}, "(1, 2)"},
		{"mapping", map[string]any{"b": 2, "a": 1}, "{'a': 1, 'b': 2}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatValue(tt.in); got != tt.want {
				t.Errorf("FormatValue(%#v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatArgs(t *testing.T) {
	if got := FormatArgs(nil); got != "[]" {
		t.Errorf("FormatArgs(nil) = %q, want []", got)
	}
	if got := FormatArgs([]any{64, 3, 2}); got != "[64, 3, 2]" {
		t.Errorf("FormatArgs() = %q", got)
	}
}
