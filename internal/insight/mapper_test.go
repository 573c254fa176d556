package insight

import (
	"reflect"
	"testing"
)

func TestTechniquesFor(t *testing.T) {
	m := NewMapper()

	tests := []struct {
		kind string
		want []string
	}{
		{"rsd", []string{"VALIDATE", "ATTUNE"}},
		{"self_attack", []string{"VALIDATE"}},
		{"breakthrough", []string{"CELEBRATE", "SPACE"}},
		{"profound", []string{"SPACE", "MIRROR"}},
		{"unknown", []string{}},
		{"", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			got := m.TechniquesFor(tt.kind)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TechniquesFor(%q) = %v, want %v", tt.kind, got, tt.want)
			}
		})
	}
}

func TestTechniquesFor_ReturnsCopy(t *testing.T) {
	m := NewMapper()

	first := m.TechniquesFor("rsd")
	first[0] = "MIRROR"

	second := m.TechniquesFor("rsd")
	if second[0] != "VALIDATE" {
		t.Errorf("mutating a returned slice leaked into the mapper: %v", second)
	}
}
