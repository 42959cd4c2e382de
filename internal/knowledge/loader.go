package knowledge

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a knowledge-base YAML file into a Context. The file carries
// the company block, product catalog, FAQ list and assistant config in one
// document; see config/knowledge.yaml for the expected shape.
func LoadFile(path string) (*Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a knowledge-base YAML document and validates the minimum the
// engine needs to operate.
func Parse(data []byte) (*Context, error) {
	var ctx Context
	if err := yaml.Unmarshal(data, &ctx); err != nil {
		return nil, fmt.Errorf("parse knowledge yaml: %w", err)
	}

	if ctx.Company.Name == "" {
		return nil, fmt.Errorf("knowledge file missing company name")
	}
	if ctx.AI.Greeting == "" {
		ctx.AI.Greeting = "Olá! Bem-vindo à ${companyName}. Como posso ajudar?"
	}
	if ctx.AI.ToneOfVoice == "" {
		ctx.AI.ToneOfVoice = "friendly"
	}

	seen := map[string]bool{}
	for i, p := range ctx.Products {
		if p.ID == "" {
			return nil, fmt.Errorf("product %d (%q) missing id", i, p.Name)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("duplicate product id %q", p.ID)
		}
		seen[p.ID] = true
	}
	return &ctx, nil
}
