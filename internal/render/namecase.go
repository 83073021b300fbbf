package render

import "strings"

// The html minifier lowercases element and attribute names. restoreNameCase puts the
// source spelling back. Minified output holds the source names in the same order, minus
// dropped attributes, so output names are matched to the next source name with the
// same kind and lowercase form.

type nameKind uint8

const (
	nameStartTag nameKind = iota
	nameEndTag
	nameAttribute
)

type markupName struct {
	kind       nameKind
	text       string
	start, end int
}

var rawTextElements = []string{"script", "style", "textarea", "title"}

func restoreNameCase(source, minified string) string {
	names := scanMarkupNames(source)
	mixed := false
	for _, n := range names {
		if n.text != strings.ToLower(n.text) {
			mixed = true
			break
		}
	}
	if !mixed {
		return minified
	}

	var b strings.Builder
	b.Grow(len(minified))
	last, next := 0, 0
	for _, out := range scanMarkupNames(minified) {
		for i := next; i < len(names); i++ {
			src := names[i]
			if src.kind != out.kind || !strings.EqualFold(src.text, out.text) {
				continue
			}
			if src.text != out.text {
				b.WriteString(minified[last:out.start])
				b.WriteString(src.text)
				last = out.end
			}
			next = i + 1
			break
		}
	}
	b.WriteString(minified[last:])
	return b.String()
}

// scanMarkupNames lists tag and attribute names in document order. Comments,
// declarations and raw text element bodies are skipped.
func scanMarkupNames(s string) []markupName {
	var names []markupName
	i := 0
	for i < len(s) {
		lt := strings.IndexByte(s[i:], '<')
		if lt < 0 {
			break
		}
		i += lt
		if strings.HasPrefix(s[i:], "<!--") {
			end := strings.Index(s[i+4:], "-->")
			if end < 0 {
				break
			}
			i += 4 + end + 3
			continue
		}
		if i+1 < len(s) && (s[i+1] == '!' || s[i+1] == '?') {
			end := strings.IndexByte(s[i:], '>')
			if end < 0 {
				break
			}
			i += end + 1
			continue
		}

		kind := nameStartTag
		j := i + 1
		if j < len(s) && s[j] == '/' {
			kind = nameEndTag
			j++
		}
		if j >= len(s) || !isASCIILetter(s[j]) {
			i++
			continue
		}
		k := j
		for k < len(s) && !isSpace(s[k]) && s[k] != '/' && s[k] != '>' {
			k++
		}
		tag := s[j:k]
		names = append(names, markupName{kind: kind, text: tag, start: j, end: k})
		i = scanAttributes(s, k, kind, &names)

		if kind == nameStartTag {
			i = skipRawText(s, i, strings.ToLower(tag))
		}
	}
	return names
}

// scanAttributes records attribute names from i up to the closing '>' and returns the
// offset after it.
func scanAttributes(s string, i int, kind nameKind, names *[]markupName) int {
	for i < len(s) && s[i] != '>' {
		if isSpace(s[i]) || s[i] == '/' {
			i++
			continue
		}
		start := i
		for i < len(s) && !isSpace(s[i]) && s[i] != '=' && s[i] != '>' && s[i] != '/' {
			i++
		}
		if i == start {
			i++
			continue
		}
		if kind == nameStartTag {
			*names = append(*names, markupName{kind: nameAttribute, text: s[start:i], start: start, end: i})
		}
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i >= len(s) || s[i] != '=' {
			continue
		}
		i++
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i < len(s) && (s[i] == '"' || s[i] == '\'') {
			end := strings.IndexByte(s[i+1:], s[i])
			if end < 0 {
				return len(s)
			}
			i += end + 2
			continue
		}
		for i < len(s) && !isSpace(s[i]) && s[i] != '>' {
			i++
		}
	}
	return i + 1
}

func skipRawText(s string, i int, tag string) int {
	for _, raw := range rawTextElements {
		if raw != tag {
			continue
		}
		for j := i; j+2+len(tag) <= len(s); j++ {
			if s[j] == '<' && s[j+1] == '/' && strings.EqualFold(s[j+2:j+2+len(tag)], tag) {
				return j
			}
		}
		return len(s)
	}
	return i
}

func isASCIILetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
