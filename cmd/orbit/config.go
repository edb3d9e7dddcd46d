package main

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed menu.yaml
var defaultMenuYAML []byte

// MenuItem is one entry of the menu tree. Leaf items carry no children;
// a non-leaf item opens a submenu of its children when selected.
type MenuItem struct {
	Label    string     `yaml:"label"`
	ID       string     `yaml:"id"`
	Icon     string     `yaml:"icon,omitempty"`
	Model    string     `yaml:"model,omitempty"`
	Children []MenuItem `yaml:"children,omitempty"`
}

// MenuConfig is the demo's menu definition.
type MenuConfig struct {
	Title  string     `yaml:"title"`
	Radius float64    `yaml:"radius,omitempty"`
	Items  []MenuItem `yaml:"items"`
}

// LoadMenuConfig reads a menu definition. An empty path loads the
// embedded default menu.
func LoadMenuConfig(path string) (*MenuConfig, error) {
	data := defaultMenuYAML
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read menu config: %w", err)
		}
	}

	var cfg MenuConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse menu config: %w", err)
	}
	if len(cfg.Items) == 0 {
		return nil, fmt.Errorf("menu config has no items")
	}
	for i, item := range cfg.Items {
		if item.Label == "" {
			return nil, fmt.Errorf("menu item %d has no label", i)
		}
	}
	return &cfg, nil
}

// countItems returns the total number of items in the tree.
func (c *MenuConfig) countItems() int {
	n := 0
	var walk func(items []MenuItem)
	walk = func(items []MenuItem) {
		n += len(items)
		for _, item := range items {
			walk(item.Children)
		}
	}
	walk(c.Items)
	return n
}
