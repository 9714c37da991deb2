package access

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type policyFile struct {
	Rules []Rule `yaml:"rules"`
}

// ParsePolicy decodes a YAML rule table of the form:
//
//	rules:
//	  - pattern: /dashboard/pos/*
//	    roles: [admin, cashier]
func ParsePolicy(r io.Reader) (*Policy, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f policyFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("access: empty policy document")
		}
		return nil, fmt.Errorf("access: decode policy: %w", err)
	}
	if len(f.Rules) == 0 {
		return nil, errors.New("access: policy has no rules")
	}
	return NewPolicy(f.Rules)
}

// LoadPolicyFile reads a YAML policy from disk.
func LoadPolicyFile(path string) (*Policy, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("access: read policy %s: %w", path, err)
	}
	return ParsePolicy(bytes.NewReader(content))
}

// Load returns the policy at path, or the built-in table when path is empty.
func Load(path string) (*Policy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}
	return LoadPolicyFile(path)
}
