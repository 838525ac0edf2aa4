package fixer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Step is one remediation action from a runbook, executed in order.
type Step struct {
	Action      string `yaml:"action"` // restart, start, stop, wait
	Target      string `yaml:"target"` // service name; defaults to the runbook's service
	WaitSeconds int    `yaml:"wait_seconds"`
}

// Runbook describes the scripted remediation for one service.
type Runbook struct {
	Service     string   `yaml:"service"`
	Description string   `yaml:"description"`
	Conditions  []string `yaml:"conditions"` // issue conditions this runbook covers; empty covers all
	Steps       []Step   `yaml:"steps"`
	Escalate    bool     `yaml:"escalate"` // notify even after successful remediation
}

// LoadRunbooks reads every *.yaml/*.yml file in dir, keyed by service
// name. A missing directory is not an error; there are just no
// runbooks.
func LoadRunbooks(dir string) (map[string]Runbook, error) {
	books := map[string]Runbook{}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return books, nil
		}
		return nil, fmt.Errorf("read runbook dir: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read runbook %s: %w", name, err)
		}
		var rb Runbook
		if err := yaml.Unmarshal(data, &rb); err != nil {
			return nil, fmt.Errorf("parse runbook %s: %w", name, err)
		}
		if rb.Service == "" {
			return nil, fmt.Errorf("runbook %s: service is required", name)
		}
		books[rb.Service] = rb
	}
	return books, nil
}

// covers reports whether the runbook applies to the given condition.
func (rb Runbook) covers(condition string) bool {
	if len(rb.Conditions) == 0 {
		return true
	}
	for _, c := range rb.Conditions {
		if strings.EqualFold(c, condition) {
			return true
		}
	}
	return false
}
