// Package markdown imports a directory of markdown files with YAML front matter into
// the page store. Bodies are stored unrendered; the publisher converts them at render
// time.
package markdown
