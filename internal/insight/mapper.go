package insight

// Mapper maps detector kinds to the techniques a persistent pattern of that
// kind should bias the selector toward.
type Mapper struct {
	mapping map[string][]string
}

func NewMapper() *Mapper {
	return &Mapper{
		mapping: map[string][]string{
			"rsd":          {"VALIDATE", "ATTUNE"},
			"self_attack":  {"VALIDATE"},
			"breakthrough": {"CELEBRATE", "SPACE"},
			"profound":     {"SPACE", "MIRROR"},
		},
	}
}

// TechniquesFor returns the techniques to bias toward for a detector kind.
func (m *Mapper) TechniquesFor(kind string) []string {
	techniques, exists := m.mapping[kind]
	if !exists {
		return []string{}
	}
	// Return a copy to avoid external modification
	result := make([]string, len(techniques))
	copy(result, techniques)
	return result
}
