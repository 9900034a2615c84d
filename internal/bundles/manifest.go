package bundles

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// manifest is the declarative YAML bundle format. It compiles to the same
// collection text a *.spell file holds; repetitive collections are easier to
// maintain as structured data.
type manifest struct {
	Comment string          `yaml:"comment"`
	Params  []manifestParam `yaml:"params"`
	Spells  []manifestSpell `yaml:"spells"`
}

type manifestParam struct {
	ID      string `yaml:"id"`
	Label   string `yaml:"label"`
	Group   string `yaml:"group"`
	Kind    string `yaml:"kind"`
	Min     int    `yaml:"min"`
	Max     int    `yaml:"max"`
	Step    int    `yaml:"step"`
	Default int    `yaml:"default"`
}

type manifestSpell struct {
	Name    string `yaml:"name"`
	Level   int    `yaml:"level"`
	Formula string `yaml:"formula"`
}

// loadManifest reads a YAML bundle file and renders it to collection text.
func loadManifest(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("bundles: reading manifest %q: %w", path, err)
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return "", fmt.Errorf("bundles: parsing manifest %q: %w", path, err)
	}
	if len(m.Spells) == 0 {
		return "", fmt.Errorf("bundles: manifest %q declares no spells", path)
	}

	var b strings.Builder
	if m.Comment != "" {
		fmt.Fprintf(&b, "# %s\n\n", m.Comment)
	}
	for _, p := range m.Params {
		fmt.Fprintf(&b, "param %s %q group %q %s %d..%d", p.ID, p.Label, p.Group, p.Kind, p.Min, p.Max)
		if p.Step > 1 {
			fmt.Fprintf(&b, " step %d", p.Step)
		}
		fmt.Fprintf(&b, " default %d\n", p.Default)
	}
	if len(m.Params) > 0 {
		b.WriteByte('\n')
	}
	for _, s := range m.Spells {
		name := s.Name
		if strings.ContainsAny(name, " \t") {
			name = fmt.Sprintf("%q", name)
		}
		if s.Level > 0 {
			fmt.Fprintf(&b, "spell %s level %d: %s\n", name, s.Level, s.Formula)
		} else {
			fmt.Fprintf(&b, "spell %s: %s\n", name, s.Formula)
		}
	}
	return b.String(), nil
}
