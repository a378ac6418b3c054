package domain

// Category is a configured disposition target.
type Category struct {
	Key         string `json:"key"`
	Path        string `json:"path"`
	Tag         string `json:"tag,omitempty"`
	Description string `json:"description"`
}

type IgnoreRules struct {
	Extensions  []string `json:"extensions"`
	Directories []string `json:"directories"`
	Prefixes    []string `json:"prefixes"`
}

// Catalog is the immutable set of categories loaded at startup.
// Categories keep their declaration order.
type Catalog struct {
	Categories        []Category  `json:"categories"`
	Fallback          string      `json:"fallback_category"`
	InstallerCategory string      `json:"installer_category,omitempty"`
	Ignore            IgnoreRules `json:"ignore"`
	TagCLI            string      `json:"tag_cli,omitempty"`
}

func (c Catalog) Get(key string) (Category, bool) {
	for _, cat := range c.Categories {
		if cat.Key == key {
			return cat, true
		}
	}
	return Category{}, false
}

func (c Catalog) Keys() []string {
	keys := make([]string, 0, len(c.Categories))
	for _, cat := range c.Categories {
		keys = append(keys, cat.Key)
	}
	return keys
}

func (c Catalog) Paths() []string {
	paths := make([]string, 0, len(c.Categories))
	for _, cat := range c.Categories {
		paths = append(paths, cat.Path)
	}
	return paths
}
