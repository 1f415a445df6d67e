package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Graph describes a node tree, the services that may be stored, and a
// script of registry operations to run against them.
type Graph struct {
	Name     string        `yaml:"name" validate:"required"`
	Nodes    []NodeSpec    `yaml:"nodes" validate:"dive"`
	Services []ServiceSpec `yaml:"services" validate:"dive"`
	Steps    []Step        `yaml:"steps" validate:"dive"`
}

// NodeSpec is one node of the tree. Aware nodes receive a token; preload
// nodes only materialize their children when preloaded.
type NodeSpec struct {
	ID       string     `yaml:"id" validate:"required,node_id"`
	Aware    bool       `yaml:"aware"`
	Preload  bool       `yaml:"preload"`
	Children []NodeSpec `yaml:"children" validate:"dive"`
}

// ServiceSpec declares a tag and the service nodes every service stored
// under it carries.
type ServiceSpec struct {
	Tag   string     `yaml:"tag" validate:"required"`
	Parts []NodeSpec `yaml:"parts" validate:"dive"`
}

// Step operations.
const (
	OpStore  = "store"
	OpRemove = "remove"
	OpAwait  = "await"
)

// Step is one registry operation.
type Step struct {
	Op        string `yaml:"op" validate:"required,oneof=store remove await"`
	Tag       string `yaml:"tag" validate:"required"`
	Component string `yaml:"component" validate:"required_if=Op store"`
}

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// Load reads and validates a graph description.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewParseError(path, 0, err)
	}
	return Parse(path, data)
}

// Parse decodes and validates data; path is only used in errors.
func Parse(path string, data []byte) (*Graph, error) {
	var g Graph
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, NewParseError(path, extractLine(err), err)
	}
	if err := Validate(&g); err != nil {
		return nil, err
	}
	return &g, nil
}

func extractLine(err error) int {
	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}
	var line int
	if _, scanErr := fmt.Sscanf(matches[1], "%d", &line); scanErr != nil {
		return 0
	}
	return line
}
