package parser

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fngroup/internal/adapter/diag"
	"fngroup/internal/domain"
)

var ignorePositions = cmp.Options{
	cmpopts.IgnoreFields(domain.FunctionGroup{}, "Pos"),
	cmpopts.IgnoreFields(domain.Variant{}, "Pos", "BodyPos", "Body"),
	cmpopts.IgnoreFields(domain.Argument{}, "Pos"),
	cmpopts.IgnoreFields(domain.Receiver{}, "Pos"),
}

func parseGroups(t *testing.T, src string) []*domain.FunctionGroup {
	t.Helper()
	sf, err := NewParser().Parse("test.fng", []byte(src))
	require.NoError(t, err)
	return sf.Groups()
}

func TestParseFreeGroup(t *testing.T) {
	src := `package mathx

function_group! {
	pub fn add -> int {
		(one: int, two: int) {
			return one + two
		}
		(one: int, two: int, three: int) {
			return Add(tuple.Of2(one, two)) + three
		};
	}
}
`
	groups := parseGroups(t, src)
	require.Len(t, groups, 1)

	want := &domain.FunctionGroup{
		Visibility: domain.Public,
		Name:       "add",
		Output:     "int",
		Variants: []domain.Variant{
			{Arguments: []domain.Argument{{Name: "one", Type: "int"}, {Name: "two", Type: "int"}}},
			{Arguments: []domain.Argument{{Name: "one", Type: "int"}, {Name: "two", Type: "int"}, {Name: "three", Type: "int"}}},
		},
	}
	if diff := cmp.Diff(want, groups[0], ignorePositions); diff != "" {
		t.Errorf("group mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "\n\t\t\treturn one + two\n\t\t", groups[0].Variants[0].Body)
	assert.Equal(t, 5, groups[0].Variants[0].BodyPos.Line)
	assert.Equal(t, 3, groups[0].Pos.Line)
}

func TestParseSegments(t *testing.T) {
	src := "package p\n\nfunction_group! { fn f { () {} } }\n\nvar x = 1\n"
	sf, err := NewParser().Parse("test.fng", []byte(src))
	require.NoError(t, err)
	require.Len(t, sf.Segments, 3)

	assert.Equal(t, "package p\n\n", sf.Segments[0].Text)
	assert.Equal(t, 1, sf.Segments[0].Pos.Line)
	require.NotNil(t, sf.Segments[1].Group)
	assert.Equal(t, "f", sf.Segments[1].Group.Name)
	assert.Equal(t, "\n\nvar x = 1\n", sf.Segments[2].Text)
	assert.Equal(t, 3, sf.Segments[2].Pos.Line)
}

func TestParseMutability(t *testing.T) {
	groups := parseGroups(t, `package p
function_group! {
	fn add_10 -> int {
		(mut one: int) {
			one += 10
			return one
		}
	}
}`)
	require.Len(t, groups, 1)
	g := groups[0]
	assert.Equal(t, domain.Private, g.Visibility)
	require.Len(t, g.Variants, 1)
	assert.Equal(t, []domain.Argument{{Name: "one", Type: "int", Mutable: true, Pos: g.Variants[0].Arguments[0].Pos}}, g.Variants[0].Arguments)
}

func TestParseReceivers(t *testing.T) {
	tests := []struct {
		recv string
		want domain.Receiver
	}{
		{"self: TestStruct", domain.Receiver{Name: "self", Mode: domain.ByValue, Type: "TestStruct"}},
		{"mut self: TestStruct", domain.Receiver{Name: "self", Mode: domain.ByValue, Mutable: true, Type: "TestStruct"}},
		{"&self: TestStruct", domain.Receiver{Name: "self", Mode: domain.ByRef, Type: "TestStruct"}},
		{"&mut s: TestStruct", domain.Receiver{Name: "s", Mode: domain.ByMutRef, Type: "TestStruct"}},
		{"&mut self: Pair[int, string]", domain.Receiver{Name: "self", Mode: domain.ByMutRef, Type: "Pair[int, string]"}},
	}

	for _, tt := range tests {
		t.Run(tt.recv, func(t *testing.T) {
			src := "package p\nfunction_group! {\n\tpub fn add_to_struct(" + tt.recv + ") {\n\t\t(one: int) {}\n\t}\n}\n"
			groups := parseGroups(t, src)
			require.Len(t, groups, 1)
			require.NotNil(t, groups[0].Receiver)
			assert.True(t, groups[0].IsMethod())
			assert.Empty(t, groups[0].Output)
			if diff := cmp.Diff(tt.want, *groups[0].Receiver, ignorePositions); diff != "" {
				t.Errorf("receiver mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseTypes(t *testing.T) {
	groups := parseGroups(t, `package p
function_group! {
	fn f -> (map[string]struct{ a, b int }, error) {
		(
			m: map[string][]int,
			fn: func(a, b int) (int, error),
			s: struct{ x int },
			p: *int,
		) {
			return nil, nil
		}
		() { return nil, nil }
	}
}`)
	require.Len(t, groups, 1)
	g := groups[0]
	assert.Equal(t, "(map[string]struct{ a, b int }, error)", g.Output)
	require.Len(t, g.Variants, 2)
	assert.Equal(t, []string{"map[string][]int", "func(a, b int) (int, error)", "struct{ x int }", "*int"}, g.Variants[0].Types())
	assert.Empty(t, g.Variants[1].Arguments)
}

func TestParseBodyWithNestedBraces(t *testing.T) {
	groups := parseGroups(t, "package p\nfunction_group! {\n\tfn f {\n\t\t(n: int) { if n > 0 { println(\"}\") } }\n\t}\n}\n")
	require.Len(t, groups, 1)
	assert.Equal(t, " if n > 0 { println(\"}\") } ", groups[0].Variants[0].Body)
}

func TestParseMultipleInvocations(t *testing.T) {
	groups := parseGroups(t, `package p

function_group! { fn a { (x: int) {} } }

func helper() {}

function_group! { pub func b -> string { (s: string) { return s } } }
`)
	require.Len(t, groups, 2)
	assert.Equal(t, "a", groups[0].Name)
	assert.Equal(t, "b", groups[1].Name)
	assert.Equal(t, domain.Public, groups[1].Visibility)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "missing colon",
			src:  "function_group! { fn f { (one int) {} } }",
			want: "test.fng:1:31: expected ':' after parameter one, found 'int'",
		},
		{
			name: "missing type",
			src:  "function_group! { fn f { (one: ) {} } }",
			want: "missing type for parameter one",
		},
		{
			name: "malformed receiver",
			src:  "function_group! { fn f(self TestStruct) { (one: int) {} } }",
			want: "expected ':' after receiver self",
		},
		{
			name: "unclosed receiver",
			src:  "function_group! { fn f(self: TestStruct { (one: int) {} } }",
			want: "expected ')' to close the receiver",
		},
		{
			name: "missing arrow target",
			src:  "function_group! { fn f -> { (one: int) {} } }",
			want: "expected return type after '->'",
		},
		{
			name: "name is not an identifier",
			src:  "function_group! { fn 42 { } }",
			want: "expected function group name, found INT 42",
		},
		{
			name: "missing fn",
			src:  "function_group! { pub add { } }",
			want: "expected 'fn', found 'add'",
		},
		{
			name: "unterminated block",
			src:  "function_group! { fn f { (one: int) { return",
			want: "unterminated block",
		},
		{
			name: "unterminated group",
			src:  "function_group! { fn f { (one: int) {}",
			want: "unterminated function group f",
		},
		{
			name: "unterminated invocation",
			src:  "function_group! { fn f { (one: int) {} }",
			want: "unterminated function_group! invocation",
		},
		{
			name: "duplicate parameter",
			src:  "function_group! { fn f { (a: int, a: int) {} } }",
			want: "duplicate parameter a",
		},
		{
			name: "parameter shadows receiver",
			src:  "function_group! { fn f(&self: T) { (self: int) {} } }",
			want: "parameter self shadows the receiver",
		},
		{
			name: "too many parameters",
			src:  "function_group! { fn f { (a: int, b: int, c: int, d: int, e: int, f: int, g: int, h: int, i: int) {} } }",
			want: "variant declares 9 parameters, at most 8 are supported",
		},
		{
			name: "tokenizer error",
			src:  "function_group! { fn f { (s: string) { return \"open } } }",
			want: "string literal not terminated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser().Parse("test.fng", []byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)

			var ewp diag.ErrorWithPos
			assert.ErrorAs(t, err, &ewp)
			assert.True(t, strings.HasPrefix(ewp.GetPosition().String(), "test.fng:1:"))
		})
	}
}
