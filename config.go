package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pontaoski/sponge/ast"
	"gopkg.in/yaml.v2"
)

const manifestName = "Sponge Module Information"

type spongeModule struct {
	Package  string `yaml:"Package"`
	Entry    string `yaml:"Entry,omitempty"`
	Sources  string `yaml:"Sources,omitempty"`
	LogLevel string `yaml:"LogLevel,omitempty"`
	MaxDepth int    `yaml:"MaxDepth,omitempty"`
	Output   string `yaml:"Output,omitempty"`
}

func (m *spongeModule) defaults() {
	if m.Entry == "" {
		m.Entry = ast.EntryPoint
	}
	if m.Sources == "" {
		m.Sources = "*.sp"
	}
	if m.LogLevel == "" {
		m.LogLevel = "WARNING"
	}
	if m.Output == "" {
		m.Output = m.Package
	}
}

// loadModule reads the manifest in dir. A missing manifest is not an error.
func loadModule(dir string) (spongeModule, error) {
	var doc spongeModule

	data, err := ioutil.ReadFile(filepath.Join(dir, manifestName))
	if err != nil && !os.IsNotExist(err) {
		return doc, fmt.Errorf("error reading %s: %w", manifestName, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return doc, fmt.Errorf("error reading %s: %w", manifestName, err)
		}
	}

	doc.defaults()
	return doc, nil
}

func writeModule(dir string, doc spongeModule) error {
	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", manifestName, err)
	}

	err = ioutil.WriteFile(filepath.Join(dir, manifestName), out, 0644)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", manifestName, err)
	}

	return nil
}
