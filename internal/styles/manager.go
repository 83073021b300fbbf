package styles

import (
	"maps"
	"strings"
	"sync"

	"github.com/goliatone/go-sitepublish/pkg/interfaces"
)

// Manager collects the style sheets produced while rendering a single page. A new
// Manager is created for every render and is never shared between pages.
type Manager struct {
	mu     sync.Mutex
	order  []string
	sheets map[string]*interfaces.StyleSheet
}

var _ interfaces.StyleCollector = (*Manager)(nil)

// NewManager returns an empty page-scoped style manager.
func NewManager() *Manager {
	return &Manager{sheets: map[string]*interfaces.StyleSheet{}}
}

// AddRule appends rule to the sheet named sheetKey, creating the sheet on first use.
func (m *Manager) AddRule(sheetKey string, rule interfaces.StyleRule) {
	if strings.TrimSpace(rule.Selector) == "" || len(rule.Declarations) == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sheet := m.sheetLocked(sheetKey)
	sheet.Rules = append(sheet.Rules, interfaces.StyleRule{
		Selector:     strings.TrimSpace(rule.Selector),
		Declarations: maps.Clone(rule.Declarations),
	})
}

// AddStyleSheet merges sheet into the sheet with the same key.
func (m *Manager) AddStyleSheet(sheet interfaces.StyleSheet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	target := m.sheetLocked(sheet.Key)
	for _, rule := range sheet.Rules {
		target.Rules = append(target.Rules, interfaces.StyleRule{
			Selector:     rule.Selector,
			Declarations: maps.Clone(rule.Declarations),
		})
	}
	if raw := strings.TrimSpace(sheet.Raw); raw != "" {
		if target.Raw != "" {
			target.Raw += "\n"
		}
		target.Raw += raw
	}
}

// StyleSheets returns copies of the collected sheets in first-use order.
func (m *Manager) StyleSheets() []interfaces.StyleSheet {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]interfaces.StyleSheet, 0, len(m.order))
	for _, key := range m.order {
		sheet := m.sheets[key]
		out = append(out, interfaces.StyleSheet{
			Key:   sheet.Key,
			Rules: append([]interfaces.StyleRule(nil), sheet.Rules...),
			Raw:   sheet.Raw,
		})
	}
	return out
}

func (m *Manager) sheetLocked(key string) *interfaces.StyleSheet {
	key = strings.TrimSpace(key)
	if key == "" {
		key = "page"
	}
	if sheet, ok := m.sheets[key]; ok {
		return sheet
	}
	sheet := &interfaces.StyleSheet{Key: key}
	m.sheets[key] = sheet
	m.order = append(m.order, key)
	return sheet
}
