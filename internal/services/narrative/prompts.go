package narrative

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"bizplan/internal/models"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// Prompt is the catalogue entry of one slot
type Prompt struct {
	System      string  `yaml:"system"`
	Instruction string  `yaml:"instruction"`
	JSON        bool    `yaml:"json"`
	Temperature float32 `yaml:"temperature"`
}

// Catalogue maps each slot to its prompt
type Catalogue map[models.NarrativeSlot]Prompt

// ParseCatalogue decodes a YAML catalogue and checks every slot is present
func ParseCatalogue(data []byte) (Catalogue, error) {
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}
	for _, slot := range models.NarrativeSlots {
		if p, ok := c[slot]; !ok || p.Instruction == "" {
			return nil, fmt.Errorf("prompt for slot %q is missing", slot)
		}
	}
	return c, nil
}

// DefaultCatalogue returns the built-in prompts
func DefaultCatalogue() Catalogue {
	c, err := ParseCatalogue(defaultPrompts)
	if err != nil {
		panic(err)
	}
	return c
}

// LoadCatalogue reads prompts from path, or the built-in ones when path is empty
func LoadCatalogue(path string) (Catalogue, error) {
	if path == "" {
		return DefaultCatalogue(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts: %w", err)
	}
	return ParseCatalogue(data)
}

// Request builds the provider request for slot from a digest
func (c Catalogue) Request(slot models.NarrativeSlot, digest string) Request {
	p := c[slot]
	return Request{
		System:      p.System,
		Prompt:      p.Instruction + "\n\n" + digest,
		JSON:        p.JSON,
		Temperature: p.Temperature,
	}
}
