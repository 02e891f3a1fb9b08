package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckBindings(t *testing.T) {
	tests := []struct {
		name  string
		group string
		err   string
	}{
		{
			name:  "mut parameter may be reassigned",
			group: "fn f -> int { (mut one: int) { one += 10; return one } }",
		},
		{
			name:  "immutable parameter",
			group: "fn f -> int { (one: int) { one++; return one } }",
			err:   "cannot assign to one: parameter one is not declared mut",
		},
		{
			name:  "pointer parameter mutated through",
			group: "fn f { (x: *int, n: int) { *x += n } }",
		},
		{
			name:  "pointer parameter reassigned",
			group: "fn f { (x: *int, n: int) { x = nil } }",
			err:   "cannot assign to x: parameter x is not declared mut",
		},
		{
			name:  "slice and map parameters mutated through",
			group: "fn f { (s: []int, m: map[string]int) { s[0] = 1; m[\"a\"] = 2 } }",
		},
		{
			name:  "struct parameter field",
			group: "fn f { (p: Point) { p.X = 1 } }",
			err:   "cannot assign to p.X: parameter p is neither mut nor a reference",
		},
		{
			name:  "mut struct parameter field",
			group: "fn f { (mut p: Point) { p.X = 1 } }",
		},
		{
			name:  "shadowed parameter",
			group: "fn f { (one: int) { if true { one := 2; one = 3; _ = one } } }",
		},
		{
			name:  "redeclared with :=",
			group: "fn f { (one: int) { one, err := g(); _ = err } }",
			err:   "cannot assign to one: parameter one is not declared mut",
		},
		{
			name:  "range assignment",
			group: "fn f { (i: int, xs: []int) { for i = range xs {} } }",
			err:   "cannot assign to i: parameter i is not declared mut",
		},
		{
			name:  "closure assignment",
			group: "fn f { (n: int) { func() { n = 2 }() } }",
			err:   "cannot assign to n: parameter n is not declared mut",
		},
		{
			name:  "address of immutable parameter",
			group: "fn f -> int { (one: int) { p := &one; *p = 5; return one } }",
			err:   "cannot take the address of one: parameter one is not declared mut",
		},
		{
			name:  "address of immutable struct field",
			group: "fn f { (p: Point) { q := &p.X; *q = 1 } }",
			err:   "cannot take the address of p.X: parameter p is neither mut nor a reference",
		},
		{
			name:  "address of mut parameter",
			group: "fn f -> int { (mut one: int) { p := &one; *p = 5; return one } }",
		},
		{
			name:  "address of slice element",
			group: "fn f { (s: []int) { p := &s[0]; *p = 1 } }",
		},
		{
			name:  "address of ref receiver field",
			group: "fn f(&self: S) { (n: int) { p := &self.V; *p = n } }",
			err:   "cannot take the address of self.V: receiver self is bound by & (use &mut)",
		},
		{
			name:  "address of composite literal",
			group: "fn f -> *Point { (x: int) { return &Point{X: x} } }",
		},
		{
			name:  "mut ref receiver",
			group: "fn f(&mut self: S) { (n: int) { self.V += n } }",
		},
		{
			name:  "ref receiver",
			group: "fn f(&self: S) { (n: int) { self.V += n } }",
			err:   "cannot assign to self.V: receiver self is bound by & (use &mut)",
		},
		{
			name:  "ref receiver deref",
			group: "fn f(&self: S) { (v: S) { *self = v } }",
			err:   "cannot assign to *self: receiver self is bound by & (use &mut)",
		},
		{
			name:  "value receiver field",
			group: "fn f(self: S) { (n: int) { self.V = n } }",
			err:   "cannot assign to self.V: receiver self is neither mut nor a reference",
		},
		{
			name:  "mut value receiver field",
			group: "fn f(mut self: S) { (n: int) { self.V = n } }",
		},
		{
			name:  "mut ref receiver reassigned",
			group: "fn f(&mut self: S) { (v: *S) { self = v } }",
			err:   "cannot assign to self: receiver self is not declared mut",
		},
		{
			name:  "locals are unrestricted",
			group: "fn f -> int { (one: int) { sum := one; sum += 1; return sum } }",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sf := mustParse(t, "b.fng", "package b\nfunction_group! { "+tt.group+" }\n")
			groups := sf.Groups()
			require.Len(t, groups, 1)

			err := CheckBindings(groups[0])
			if tt.err == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.err)
		})
	}
}

func TestCheckBindingsReportsBodySyntaxErrors(t *testing.T) {
	sf := mustParse(t, "b.fng", "package b\nfunction_group! {\n\tfn f {\n\t\t(n: int) {\n\t\t\tx := := n\n\t\t}\n\t}\n}\n")
	err := CheckBindings(sf.Groups()[0])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b.fng:5:9: expected operand")
}

func TestBodyPosition(t *testing.T) {
	sf := mustParse(t, "b.fng", "package b\nfunction_group! {\n\tfn f {\n\t\t(n: int) {\n\t\t\tprintln(n)\n\t\t}\n\t}\n}\n")
	v := sf.Groups()[0].Variants[0]

	start := bodyPosition(v, 0)
	assert.Equal(t, 4, start.Line)
	assert.Equal(t, v.BodyPos, start)

	p := bodyPosition(v, 4)
	assert.Equal(t, 5, p.Line)
	assert.Equal(t, 4, p.Column)
	assert.Equal(t, v.BodyPos.Offset+4, p.Offset)
}
