package networks

import (
	"bytes"
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// The catalog is embedded so the binary does not depend on files next to it.
//
//go:embed networks.yaml
var catalogYAML []byte

// CustomPrefix marks networks that are not part of the catalog.
const CustomPrefix = "custom@"

// PublicNode is a community-operated RPC endpoint.
type PublicNode struct {
	URL      string `yaml:"url"`
	Provider string `yaml:"provider"`
}

type Network struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	PublicNodes []PublicNode `yaml:"public_nodes"`
}

type catalog struct {
	Networks []Network `yaml:"networks"`
}

// Registry holds all known networks by name.
var Registry = make(map[string]Network)

func init() {
	if err := registerFromYAML(catalogYAML); err != nil {
		panic(err)
	}
}

func registerFromYAML(data []byte) error {
	var c catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return fmt.Errorf("networks registry: parse networks.yaml: %w", err)
	}
	if len(c.Networks) == 0 {
		return fmt.Errorf("networks registry: networks.yaml has no entries")
	}

	for _, n := range c.Networks {
		n.Name = strings.TrimSpace(n.Name)
		if n.Name == "" {
			return fmt.Errorf("networks registry: entry without a name")
		}
		if _, exists := Registry[n.Name]; exists {
			return fmt.Errorf("networks registry: duplicate network %q", n.Name)
		}
		Registry[n.Name] = n
	}
	return nil
}

// Names returns the catalog network names sorted alphabetically.
func Names() []string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Summary lists the catalog networks as "name (description)" for help texts.
func Summary() string {
	names := Names()
	parts := make([]string, 0, len(names))
	for _, name := range names {
		if d := Registry[name].Description; d != "" {
			parts = append(parts, fmt.Sprintf("%s (%s)", name, d))
			continue
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, ", ")
}

// Resolve maps a --network value to the service network name:
// catalog names are kept, anything else becomes custom@<name>.
func Resolve(name string) string {
	if _, ok := Registry[name]; ok {
		return name
	}
	return CustomPrefix + name
}

// PublicNodes returns the public RPC nodes of a network, or nil for unknown and custom networks.
func PublicNodes(name string) []PublicNode {
	return Registry[name].PublicNodes
}
