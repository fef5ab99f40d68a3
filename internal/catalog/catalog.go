// Package catalog holds the static academic program descriptors used for
// program detection and direct program-information answers. The catalog is
// loaded once at startup and never mutated afterwards.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed programs.json
var programsJSON []byte

//go:embed programs.schema.json
var programsSchema []byte

// Program describes a single degree offering.
type Program struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Offered     bool     `json:"offered"`
	Duration    string   `json:"duration"`
	Semesters   int      `json:"semesters"`
	Seats       int      `json:"seats"`
	Affiliation string   `json:"affiliation"`
	Website     string   `json:"website"`
	Keywords    []string `json:"keywords"`
}

// Catalog is the read-only set of programs offered by the college.
type Catalog struct {
	programs []Program
	byKey    map[string]Program
}

// Load parses and schema-validates the embedded program catalog.
func Load() (*Catalog, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("programs.schema.json", bytes.NewReader(programsSchema)); err != nil {
		return nil, fmt.Errorf("add catalog schema: %w", err)
	}
	schema, err := compiler.Compile("programs.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile catalog schema: %w", err)
	}

	var document interface{}
	if err := json.Unmarshal(programsJSON, &document); err != nil {
		return nil, fmt.Errorf("parse program catalog: %w", err)
	}
	if err := schema.Validate(document); err != nil {
		return nil, fmt.Errorf("validate program catalog: %w", err)
	}

	var programs []Program
	if err := json.Unmarshal(programsJSON, &programs); err != nil {
		return nil, fmt.Errorf("decode program catalog: %w", err)
	}

	sort.Slice(programs, func(i, j int) bool { return programs[i].Key < programs[j].Key })

	byKey := make(map[string]Program, len(programs))
	for _, program := range programs {
		byKey[program.Key] = program
	}

	return &Catalog{programs: programs, byKey: byKey}, nil
}

// Programs returns every catalog entry in key order.
func (c *Catalog) Programs() []Program {
	return append([]Program(nil), c.programs...)
}

// Get returns the program for a catalog key.
func (c *Catalog) Get(key string) (Program, bool) {
	program, ok := c.byKey[strings.ToLower(key)]
	return program, ok
}

// Detect scans free text for program keyword aliases. Entries are checked in
// key order so detection is deterministic when aliases overlap.
func (c *Catalog) Detect(question string) (Program, bool) {
	lower := strings.ToLower(question)
	for _, program := range c.programs {
		for _, keyword := range program.Keywords {
			if containsWord(lower, keyword) {
				return program, true
			}
		}
	}
	return Program{}, false
}

// containsWord reports whether text contains keyword bounded by non-letters,
// so "bca" does not match inside "bcash".
func containsWord(text, keyword string) bool {
	for start := 0; ; {
		idx := strings.Index(text[start:], keyword)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(keyword)
		beforeOK := idx == 0 || !isLetter(text[idx-1])
		afterOK := end == len(text) || !isLetter(text[end])
		if beforeOK && afterOK {
			return true
		}
		start = idx + 1
	}
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
