package styles

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"

	"github.com/goliatone/go-sitepublish/pkg/interfaces"
)

const cssMediaType = "text/css"

// Serialize renders sheets as CSS text. Declarations inside a rule are sorted by
// property so the output is stable for a given input.
func Serialize(sheets ...interfaces.StyleSheet) string {
	var b strings.Builder
	for _, sheet := range sheets {
		for _, rule := range sheet.Rules {
			if len(rule.Declarations) == 0 {
				continue
			}
			props := make([]string, 0, len(rule.Declarations))
			for prop := range rule.Declarations {
				props = append(props, prop)
			}
			sort.Strings(props)

			b.WriteString(rule.Selector)
			b.WriteString(" {\n")
			for _, prop := range props {
				fmt.Fprintf(&b, "  %s: %s;\n", prop, rule.Declarations[prop])
			}
			b.WriteString("}\n")
		}
		if raw := strings.TrimSpace(sheet.Raw); raw != "" {
			b.WriteString(raw)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// MinifyCSS compacts CSS text.
func MinifyCSS(source string) (string, error) {
	m := minify.New()
	m.AddFunc(cssMediaType, css.Minify)
	out, err := m.String(cssMediaType, source)
	if err != nil {
		return "", fmt.Errorf("styles: minify css: %w", err)
	}
	return out, nil
}
