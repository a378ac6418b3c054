package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/file-organizer/internal/core/domain"
)

const (
	DefaultFallbackCategory  = "outros"
	DefaultInstallerCategory = "softwares"
)

var (
	defaultIgnoredExtensions  = []string{".download", ".crdownload", ".tmp", ".part", ".lock"}
	defaultIgnoredDirectories = []string{".git", "venv", "__pycache__", ".Trash", "Unsorted_Review"}
	defaultIgnoredPrefixes    = []string{".", "~$"}
)

// LoadedCatalog is the parsed category catalog plus the app-level settings
// that live in the same file.
type LoadedCatalog struct {
	Catalog domain.Catalog
	LogFile string
}

type catalogFile struct {
	App struct {
		LogFile string `yaml:"log_file"`
	} `yaml:"app"`
	Paths struct {
		TagCLI string `yaml:"tag_cli"`
	} `yaml:"paths"`
	Roots             yaml.Node  `yaml:"roots"`
	Categories        yaml.Node  `yaml:"categories"`
	Ignore            ignoreFile `yaml:"ignore"`
	FallbackCategory  string     `yaml:"fallback_category"`
	InstallerCategory *string    `yaml:"installer_category"`
}

type ignoreFile struct {
	Extensions  []string `yaml:"extensions"`
	Directories []string `yaml:"directories"`
	Prefixes    []string `yaml:"prefixes"`
}

type categoryFile struct {
	Path        string `yaml:"path"`
	Tag         string `yaml:"tag"`
	Description string `yaml:"description"`
}

// LoadCatalog reads the YAML catalog, expands ${VAR} references and resolves
// root placeholders. Every failure is a domain.ErrConfig.
func LoadCatalog(path string) (*LoadedCatalog, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, domain.WrapError(domain.ErrConfig, "load catalog", fmt.Errorf("config file not found at: %s", path))
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrConfig, "load catalog", fmt.Errorf("read config file: %w", err))
	}
	return ParseCatalog([]byte(os.ExpandEnv(string(raw))))
}

func ParseCatalog(raw []byte) (*LoadedCatalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, domain.WrapError(domain.ErrConfig, "parse catalog", err)
	}

	roots, err := resolveRoots(&file.Roots)
	if err != nil {
		return nil, domain.WrapError(domain.ErrConfig, "resolve roots", err)
	}
	categories, err := decodeCategories(&file.Categories, roots)
	if err != nil {
		return nil, domain.WrapError(domain.ErrConfig, "decode categories", err)
	}

	catalog := domain.Catalog{
		Categories: categories,
		Fallback:   strings.TrimSpace(file.FallbackCategory),
		Ignore:     withIgnoreDefaults(file.Ignore),
		TagCLI:     strings.TrimSpace(file.Paths.TagCLI),
	}
	if catalog.Fallback == "" {
		catalog.Fallback = DefaultFallbackCategory
	}
	explicitInstaller := file.InstallerCategory != nil
	if explicitInstaller {
		catalog.InstallerCategory = strings.TrimSpace(*file.InstallerCategory)
	} else if _, ok := catalog.Get(DefaultInstallerCategory); ok {
		catalog.InstallerCategory = DefaultInstallerCategory
	}

	if err := validateCatalog(catalog, explicitInstaller); err != nil {
		return nil, domain.WrapError(domain.ErrConfig, "validate catalog", err)
	}

	return &LoadedCatalog{
		Catalog: catalog,
		LogFile: expandHome(strings.TrimSpace(file.App.LogFile)),
	}, nil
}

// resolveRoots resolves roots in declaration order. A root may reference
// roots declared before it.
func resolveRoots(node *yaml.Node) (*strings.Replacer, error) {
	pairs := []string{}
	if node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.Tag == "!!null") {
		return strings.NewReplacer(), nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("roots must be a mapping")
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		var value string
		if err := node.Content[i+1].Decode(&value); err != nil {
			return nil, fmt.Errorf("root %q: %w", key, err)
		}
		resolved := strings.NewReplacer(pairs...).Replace(expandHome(value))
		pairs = append(pairs, "{"+key+"}", resolved)
	}
	return strings.NewReplacer(pairs...), nil
}

func decodeCategories(node *yaml.Node, roots *strings.Replacer) ([]domain.Category, error) {
	if node.Kind != yaml.MappingNode || len(node.Content) == 0 {
		return nil, fmt.Errorf("at least one category is required")
	}
	out := make([]domain.Category, 0, len(node.Content)/2)
	seen := make(map[string]struct{}, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := strings.TrimSpace(node.Content[i].Value)
		if key == "" {
			return nil, fmt.Errorf("category key is empty")
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("category %q declared twice", key)
		}
		seen[key] = struct{}{}

		var cf categoryFile
		if err := node.Content[i+1].Decode(&cf); err != nil {
			return nil, fmt.Errorf("category %q: %w", key, err)
		}
		if strings.TrimSpace(cf.Path) == "" {
			return nil, fmt.Errorf("category %q: path is required", key)
		}
		resolved, err := filepath.Abs(roots.Replace(expandHome(strings.TrimSpace(cf.Path))))
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", key, err)
		}
		out = append(out, domain.Category{
			Key:         key,
			Path:        resolved,
			Tag:         strings.TrimSpace(cf.Tag),
			Description: strings.TrimSpace(cf.Description),
		})
	}
	return out, nil
}

func validateCatalog(c domain.Catalog, explicitInstaller bool) error {
	if _, ok := c.Get(c.Fallback); !ok {
		return fmt.Errorf("fallback category %q is not defined in categories", c.Fallback)
	}
	if explicitInstaller && c.InstallerCategory != "" {
		if _, ok := c.Get(c.InstallerCategory); !ok {
			return fmt.Errorf("installer category %q is not defined in categories", c.InstallerCategory)
		}
	}
	return nil
}

func withIgnoreDefaults(in ignoreFile) domain.IgnoreRules {
	out := domain.IgnoreRules{
		Extensions:  in.Extensions,
		Directories: in.Directories,
		Prefixes:    in.Prefixes,
	}
	if out.Extensions == nil {
		out.Extensions = append([]string(nil), defaultIgnoredExtensions...)
	}
	if out.Directories == nil {
		out.Directories = append([]string(nil), defaultIgnoredDirectories...)
	}
	if out.Prefixes == nil {
		out.Prefixes = append([]string(nil), defaultIgnoredPrefixes...)
	}
	for i, ext := range out.Extensions {
		out.Extensions[i] = strings.ToLower(ext)
	}
	return out
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
