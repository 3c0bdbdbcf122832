package catalog

import (
	"embed"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// DefaultPrefix is used when neither the type nor the name yields letters.
const DefaultPrefix = "AS"

// Catalog holds the known asset types. Asset types stay free-form: the
// catalog only supplies tag prefixes and form suggestions.
type Catalog struct {
	mu     sync.RWMutex
	types  []AssetType
	byName map[string]int // lower-cased name -> index
}

// New creates a catalog from the embedded YAML file
func New() (*Catalog, error) {
	data, err := configFiles.ReadFile("config/asset_types.yaml")
	if err != nil {
		return nil, fmt.Errorf("read asset types: %w", err)
	}
	return Parse(data)
}

// Parse creates a catalog from YAML content
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal asset types: %w", err)
	}

	c := &Catalog{byName: make(map[string]int)}
	for _, t := range file.Types {
		if err := c.add(t); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) add(t AssetType) error {
	prefix := strings.ToUpper(strings.TrimSpace(t.Prefix))
	if len(prefix) < 2 || len(prefix) > 4 {
		return fmt.Errorf("asset type %q: prefix must be 2-4 characters", t.Name)
	}
	t.Prefix = prefix

	c.mu.Lock()
	defer c.mu.Unlock()

	key := strings.ToLower(t.Name)
	if _, dup := c.byName[key]; dup {
		return fmt.Errorf("asset type %q defined twice", t.Name)
	}
	c.byName[key] = len(c.types)
	c.types = append(c.types, t)
	return nil
}

// Types returns the catalog in file order
func (c *Catalog) Types() []AssetType {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]AssetType, len(c.types))
	copy(out, c.types)
	return out
}

// Lookup finds a type by name, ignoring case
func (c *Catalog) Lookup(name string) (AssetType, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return AssetType{}, false
	}
	return c.types[i], true
}

// TagPrefix picks the asset tag prefix. A catalog entry wins; otherwise the
// first two letters of the type, then of the name, upper-cased.
func (c *Catalog) TagPrefix(assetType, name string) string {
	if c != nil {
		if t, ok := c.Lookup(assetType); ok {
			return t.Prefix
		}
	}
	for _, s := range []string{assetType, name} {
		if p := letterPrefix(s, 2); p != "" {
			return p
		}
	}
	return DefaultPrefix
}

// letterPrefix returns the first n letters or digits of s, upper-cased, or ""
// when s has fewer than n.
func letterPrefix(s string, n int) string {
	var b strings.Builder
	count := 0
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
		count++
		if count == n {
			return b.String()
		}
	}
	return ""
}
