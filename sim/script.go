// Package sim runs scripted trading agents concurrently against one
// desk, one goroutine per named account.
package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Order is a single scripted trade.
type Order struct {
	Side      string `json:"side" yaml:"side"` // "buy" or "sell"
	Symbol    string `json:"symbol" yaml:"symbol"`
	Quantity  int    `json:"quantity" yaml:"quantity"`
	Rationale string `json:"rationale,omitempty" yaml:"rationale,omitempty"`
}

// Agent is a named trader with an ordered list of trades.
type Agent struct {
	Name     string  `json:"name" yaml:"name"`
	Strategy string  `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	Orders   []Order `json:"orders" yaml:"orders"`
}

// Script is a full simulation scenario.
type Script struct {
	Agents []Agent `json:"agents" yaml:"agents"`
}

// LoadScript reads a scenario from a YAML file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}
	return &s, nil
}

// Validate checks the scenario for structural problems.
func (s *Script) Validate() error {
	if len(s.Agents) == 0 {
		return fmt.Errorf("script has no agents")
	}
	seen := make(map[string]bool)
	for _, a := range s.Agents {
		if a.Name == "" {
			return fmt.Errorf("agent without a name")
		}
		if seen[a.Name] {
			return fmt.Errorf("duplicate agent %q", a.Name)
		}
		seen[a.Name] = true

		for i, o := range a.Orders {
			if o.Side != "buy" && o.Side != "sell" {
				return fmt.Errorf("agent %q order %d: side must be 'buy' or 'sell'", a.Name, i)
			}
			if o.Symbol == "" {
				return fmt.Errorf("agent %q order %d: symbol is required", a.Name, i)
			}
		}
	}
	return nil
}
