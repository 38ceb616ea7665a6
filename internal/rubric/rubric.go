// Package rubric defines the operator-configured behavior rubrics that
// calls are evaluated against.
package rubric

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Rubric is one named compliance criterion. The Criteria text is
// authoritative for what "compliant" means; the evaluator must not judge
// beyond it.
type Rubric struct {
	ID          uuid.UUID
	Name        string
	Description string
	Criteria    string
	Active      bool
}

type seedFile struct {
	Rubrics []seedRubric `yaml:"rubrics"`
}

type seedRubric struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Criteria    string `yaml:"criteria"`
}

// LoadSeedFile reads operator rubric definitions from a YAML file. Seeded
// rubrics are created active; IDs are assigned at insert time by the store.
func LoadSeedFile(path string) ([]Rubric, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	rubrics := make([]Rubric, 0, len(f.Rubrics))
	for i, s := range f.Rubrics {
		if s.Name == "" {
			return nil, fmt.Errorf("rubric %d: name is required", i)
		}
		if s.Criteria == "" {
			return nil, fmt.Errorf("rubric %q: criteria is required", s.Name)
		}
		rubrics = append(rubrics, Rubric{
			Name:        s.Name,
			Description: s.Description,
			Criteria:    s.Criteria,
			Active:      true,
		})
	}
	return rubrics, nil
}
