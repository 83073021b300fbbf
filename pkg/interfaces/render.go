package interfaces

// StyleRule is a single CSS rule. Declarations are emitted in sorted property order.
type StyleRule struct {
	Selector     string            `json:"selector"`
	Declarations map[string]string `json:"declarations,omitempty"`
}

// StyleSheet groups rules under a key. Raw holds verbatim CSS appended after the rules.
type StyleSheet struct {
	Key   string      `json:"key,omitempty"`
	Rules []StyleRule `json:"rules,omitempty"`
	Raw   string      `json:"raw,omitempty"`
}

// StyleCollector accumulates the style sheets produced while rendering one page.
type StyleCollector interface {
	AddRule(sheetKey string, rule StyleRule)
	AddStyleSheet(sheet StyleSheet)
	StyleSheets() []StyleSheet
}

// OpenGraph holds the open-graph block of a rendered page.
type OpenGraph struct {
	Type        string
	Title       string
	Description string
	URL         string
	Image       string
	SiteName    string
}

// RenderBindings exposes the per-render state a renderer binds against.
type RenderBindings struct {
	Styles         StyleCollector
	NavigationPath string
	Locale         string
	Content        *PageContent
}

// RenderContext ("HtmlPage") is built once per page and locale and lives for a single render.
type RenderContext struct {
	Title            string
	Description      string
	Keywords         string
	Permalink        string
	URL              string
	Author           string
	Locale           string
	StyleReferences  []string
	OpenGraph        OpenGraph
	LinkedData       map[string]any
	FaviconPermalink string
	Bindings         RenderBindings
}
