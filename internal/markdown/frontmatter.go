package markdown

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
)

// FrontMatter is the metadata block accepted at the top of an imported file.
type FrontMatter struct {
	Title       string `yaml:"title"`
	Slug        string `yaml:"slug"`
	Permalink   string `yaml:"permalink"`
	Description string `yaml:"description"`
	Keywords    any    `yaml:"keywords"`
	Locale      string `yaml:"locale"`
	Position    int    `yaml:"position"`
	JSONLD      any    `yaml:"json_ld"`
	Share       struct {
		Title       string `yaml:"title"`
		Description string `yaml:"description"`
		Image       string `yaml:"image"`
	} `yaml:"share"`
}

// ParseFrontMatter splits source into its metadata block and markdown body. Files
// without a metadata block yield a zero FrontMatter and the full source as body.
func ParseFrontMatter(source []byte) (FrontMatter, []byte, error) {
	var meta FrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return meta, body, nil
}

// KeywordList flattens the keywords field, which may be a string or a list.
func (f FrontMatter) KeywordList() string {
	switch value := f.Keywords.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(value)
	case []any:
		parts := make([]string, 0, len(value))
		for _, item := range value {
			if text := strings.TrimSpace(fmt.Sprint(item)); text != "" {
				parts = append(parts, text)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return strings.TrimSpace(fmt.Sprint(value))
	}
}

// LinkedData returns the json_ld field as a JSON document. A string is returned as
// written; a mapping is encoded.
func (f FrontMatter) LinkedData() (string, error) {
	switch value := f.JSONLD.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(value), nil
	default:
		encoded, err := json.Marshal(jsonValue(value))
		if err != nil {
			return "", fmt.Errorf("encode json_ld: %w", err)
		}
		return string(encoded), nil
	}
}

// jsonValue converts yaml mappings with non-string keys into JSON encodable maps.
func jsonValue(value any) any {
	switch typed := value.(type) {
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[fmt.Sprint(key)] = jsonValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = jsonValue(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = jsonValue(item)
		}
		return out
	default:
		return value
	}
}
