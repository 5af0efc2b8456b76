package classification

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/flcheck/internal/common"
	"github.com/Veraticus/flcheck/internal/model"
	"gopkg.in/yaml.v3"
)

// LoadCategories reads category definitions from YAML, keeping their order. Two forms are
// accepted: a mapping from category name to a pattern list (or a single pattern),
//
//	SubStation: ["^X"]
//	Common: "^Y"
//
// or a sequence of {name, patterns} objects.
func LoadCategories(r io.Reader) ([]Category, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse categories: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.MappingNode:
		return categoriesFromMapping(root)
	case yaml.SequenceNode:
		var cats []Category
		if err := root.Decode(&cats); err != nil {
			return nil, fmt.Errorf("failed to decode category list: %w", err)
		}
		return cats, nil
	default:
		return nil, fmt.Errorf("categories must be a mapping or a list (line %d)", root.Line)
	}
}

// LoadCategoriesFile reads category definitions from a YAML file.
func LoadCategoriesFile(path string) ([]Category, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("failed to open categories file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return LoadCategories(f)
}

func categoriesFromMapping(node *yaml.Node) ([]Category, error) {
	cats := make([]Category, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		cat := Category{Name: key.Value, Patterns: []string{}}

		switch val.Kind {
		case yaml.ScalarNode:
			if val.Tag != "!!null" && val.Value != "" {
				cat.Patterns = append(cat.Patterns, val.Value)
			}
		case yaml.SequenceNode:
			if err := val.Decode(&cat.Patterns); err != nil {
				return nil, fmt.Errorf("category %q: %w", key.Value, err)
			}
		default:
			return nil, fmt.Errorf("category %q must hold a pattern or a list of patterns (line %d)", key.Value, val.Line)
		}
		cats = append(cats, cat)
	}
	return cats, nil
}

// CategoriesFromTemplates derives one category per guideline source, in load order, whose
// patterns are the source's template regexes anchored to the whole value.
func CategoriesFromTemplates(templates []model.Template) []Category {
	var cats []Category
	index := make(map[string]int)
	for _, t := range templates {
		name := strings.TrimSuffix(t.Source, filepath.Ext(t.Source))
		if name == "" || name == OthersCategory {
			name = "Guideline_" + name
		}
		i, ok := index[name]
		if !ok {
			i = len(cats)
			index[name] = i
			cats = append(cats, Category{Name: name})
		}
		cats[i].Patterns = append(cats[i].Patterns, common.Anchor(t.Regex))
	}
	return cats
}
