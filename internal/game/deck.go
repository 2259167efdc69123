package game

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultSymbols is the built-in fallback set used when no remote content is
// available.
var DefaultSymbols = []string{"building.2", "tram.fill", "taxi", "ferry.fill", "bridge"}

// SymbolFile represents the top-level YAML structure.
type SymbolFile struct {
	Sets []SymbolSet `yaml:"sets"`
}

// SymbolSet is a named, ordered list of fallback symbols.
type SymbolSet struct {
	Name    string   `yaml:"name"`
	Symbols []string `yaml:"symbols"`
}

// ParseSymbolFile parses a YAML symbol file.
func ParseSymbolFile(path string) (SymbolFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SymbolFile{}, err
	}
	return ParseSymbolYAML(data)
}

// ParseSymbolYAML parses symbol sets from YAML bytes.
func ParseSymbolYAML(data []byte) (SymbolFile, error) {
	var sf SymbolFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return SymbolFile{}, fmt.Errorf("parse symbol YAML: %w", err)
	}
	return sf, nil
}

// Lookup returns the symbols of the named set. An empty name selects the
// first set.
func (sf SymbolFile) Lookup(name string) ([]string, error) {
	if len(sf.Sets) == 0 {
		return nil, fmt.Errorf("no symbol sets defined")
	}
	if name == "" {
		return sf.Sets[0].Symbols, nil
	}
	for _, s := range sf.Sets {
		if s.Name == name {
			return s.Symbols, nil
		}
	}
	return nil, fmt.Errorf("symbol set %q not found (have %d sets)", name, len(sf.Sets))
}

// SymbolSetByName loads the named set from a symbol file. An empty path
// returns DefaultSymbols.
func SymbolSetByName(path, name string) ([]string, error) {
	if path == "" {
		return DefaultSymbols, nil
	}
	sf, err := ParseSymbolFile(path)
	if err != nil {
		return nil, err
	}
	return sf.Lookup(name)
}
