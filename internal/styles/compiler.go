package styles

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gotheme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-sitepublish/pkg/interfaces"
)

// StaticCompiler returns a fixed style sheet.
type StaticCompiler struct {
	Sheet interfaces.StyleSheet
}

// GetStyleSheet satisfies interfaces.StyleCompiler.
func (c StaticCompiler) GetStyleSheet(context.Context) (interfaces.StyleSheet, error) {
	return c.Sheet, nil
}

// ManifestLoader loads a go-theme manifest from a theme directory.
type ManifestLoader interface {
	Load(themeDir string) (*gotheme.Manifest, error)
}

type dirManifestLoader struct{}

func (dirManifestLoader) Load(themeDir string) (*gotheme.Manifest, error) {
	cleaned := filepath.Clean(strings.TrimSpace(themeDir))
	if cleaned == "" || cleaned == "." {
		return nil, fmt.Errorf("styles: theme directory required")
	}
	return gotheme.LoadDir(os.DirFS(cleaned), ".")
}

// ThemeConfig selects the theme whose tokens become the global CSS custom properties.
type ThemeConfig struct {
	Dir       string
	Name      string
	Variant   string
	CSSPrefix string
	// Base is appended after the generated :root rule.
	Base interfaces.StyleSheet
}

// ThemeCompiler compiles go-theme design tokens into the global style sheet.
type ThemeCompiler struct {
	cfg    ThemeConfig
	loader ManifestLoader

	once  sync.Once
	sheet interfaces.StyleSheet
	err   error
}

// NewThemeCompiler returns a compiler for cfg. A nil loader reads manifests from disk.
func NewThemeCompiler(cfg ThemeConfig, loader ManifestLoader) *ThemeCompiler {
	if loader == nil {
		loader = dirManifestLoader{}
	}
	return &ThemeCompiler{cfg: cfg, loader: loader}
}

// GetStyleSheet satisfies interfaces.StyleCompiler. The theme is compiled once and the
// result reused by later calls.
func (c *ThemeCompiler) GetStyleSheet(ctx context.Context) (interfaces.StyleSheet, error) {
	if err := ctx.Err(); err != nil {
		return interfaces.StyleSheet{}, err
	}
	c.once.Do(func() {
		c.sheet, c.err = c.compile()
	})
	return c.sheet, c.err
}

func (c *ThemeCompiler) compile() (interfaces.StyleSheet, error) {
	sheet := interfaces.StyleSheet{Key: "global"}
	if strings.TrimSpace(c.cfg.Dir) == "" {
		sheet.Rules = append(sheet.Rules, c.cfg.Base.Rules...)
		sheet.Raw = c.cfg.Base.Raw
		return sheet, nil
	}

	manifest, err := c.loader.Load(c.cfg.Dir)
	if err != nil {
		return sheet, fmt.Errorf("styles: load theme manifest from %s: %w", c.cfg.Dir, err)
	}
	registered := *manifest
	if name := strings.TrimSpace(c.cfg.Name); name != "" {
		registered.Name = name
	}

	registry := gotheme.NewRegistry()
	if err := registry.Register(&registered); err != nil {
		return sheet, fmt.Errorf("styles: register theme: %w", err)
	}
	selector := gotheme.Selector{
		Registry:       registry,
		DefaultTheme:   registered.Name,
		DefaultVariant: strings.TrimSpace(c.cfg.Variant),
	}
	selection, err := selector.Select(registered.Name, strings.TrimSpace(c.cfg.Variant))
	if err != nil {
		return sheet, fmt.Errorf("styles: select theme %s: %w", registered.Name, err)
	}

	if vars := customProperties(selection.CSSVariables(c.cfg.CSSPrefix)); len(vars) > 0 {
		sheet.Rules = append(sheet.Rules, interfaces.StyleRule{Selector: ":root", Declarations: vars})
	}
	sheet.Rules = append(sheet.Rules, c.cfg.Base.Rules...)
	sheet.Raw = c.cfg.Base.Raw
	return sheet, nil
}

func customProperties(vars map[string]string) map[string]string {
	out := make(map[string]string, len(vars))
	for name, value := range vars {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !strings.HasPrefix(name, "--") {
			name = "--" + name
		}
		out[name] = value
	}
	return out
}
