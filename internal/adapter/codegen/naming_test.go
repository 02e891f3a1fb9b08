package codegen

import (
	"testing"

	"fngroup/internal/domain"
)

func TestGoName(t *testing.T) {
	tests := []struct {
		name string
		vis  domain.Visibility
		want string
	}{
		{"add", domain.Public, "Add"},
		{"add", domain.Private, "add"},
		{"add_to_struct", domain.Public, "AddToStruct"},
		{"add_to_struct", domain.Private, "addToStruct"},
		{"add_10", domain.Private, "add10"},
		{"Sum", domain.Private, "sum"},
		{"_helper", domain.Public, "Helper"},
		{"parseURL", domain.Public, "ParseURL"},
	}
	for _, tt := range tests {
		if got := GoName(tt.name, tt.vis); got != tt.want {
			t.Errorf("GoName(%q, %v) = %q, want %q", tt.name, tt.vis, got, tt.want)
		}
	}
}

func TestGeneratedNames(t *testing.T) {
	g := &domain.FunctionGroup{Name: "add_to", Visibility: domain.Public}
	if got := GroupTypeName(g); got != "AddToGroup" {
		t.Errorf("GroupTypeName = %q", got)
	}
	if got := VariantName(g, 2); got != "addToVariant2" {
		t.Errorf("VariantName = %q", got)
	}
}
