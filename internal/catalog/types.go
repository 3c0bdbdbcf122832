package catalog

import "gopkg.in/yaml.v3"

// AssetType describes one entry of the asset type catalog
type AssetType struct {
	// Name is the type as stored on assets (set during YAML unmarshaling)
	Name        string `yaml:"-" json:"name"`
	Prefix      string `yaml:"prefix" json:"prefix"`
	Description string `yaml:"description" json:"description"`
}

// catalogFile is the layout of the embedded YAML file
type catalogFile struct {
	Version int
	Types   []AssetType // in file order
}

// UnmarshalYAML keeps the types in the order they appear in the file,
// which a plain map would lose.
func (c *catalogFile) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Version int                  `yaml:"version"`
		Types   map[string]AssetType `yaml:"types"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	c.Version = raw.Version

	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != "types" {
			continue
		}
		typesNode := node.Content[i+1]
		for j := 0; j+1 < len(typesNode.Content); j += 2 {
			name := typesNode.Content[j].Value
			if t, ok := raw.Types[name]; ok {
				t.Name = name
				c.Types = append(c.Types, t)
			}
		}
		break
	}
	return nil
}
