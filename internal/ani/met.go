package ani

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultMET is used when an exercise name matches nothing in the table:
// generic strength training.
const defaultMET = 4.0

//go:embed met_table.yaml
var metTableYAML []byte

type metEntry struct {
	Name string  `yaml:"name"`
	MET  float64 `yaml:"met"`
}

// metTable preserves file order so substring matching is deterministic;
// metByName backs the exact-match fast path.
var (
	metTable  []metEntry
	metByName map[string]float64
)

func init() {
	if err := loadMETTable(metTableYAML); err != nil {
		panic(fmt.Sprintf("ani: bad embedded MET table: %v", err))
	}
}

func loadMETTable(raw []byte) error {
	var entries []metEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("MET table is empty")
	}
	byName := make(map[string]float64, len(entries))
	for _, e := range entries {
		if e.Name == "" || e.MET <= 0 {
			return fmt.Errorf("invalid MET entry %+v", e)
		}
		byName[strings.ToLower(e.Name)] = e.MET
	}
	metTable = entries
	metByName = byName
	return nil
}

// LookupMET resolves an exercise name to a MET coefficient: exact
// case-insensitive match first, then substring containment in either
// direction, then the generic default.
func LookupMET(name string) float64 {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return defaultMET
	}
	if met, ok := metByName[needle]; ok {
		return met
	}
	for _, e := range metTable {
		key := strings.ToLower(e.Name)
		if strings.Contains(needle, key) || strings.Contains(key, needle) {
			return e.MET
		}
	}
	return defaultMET
}
