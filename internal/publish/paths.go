package publish

import "strings"

const (
	indexDocument = "index.html"
	homePermalink = "/"
)

// LocalizedPermalink prefixes permalink with "/{code}". An empty code leaves the permalink
// untouched.
func LocalizedPermalink(code, permalink string) string {
	permalink = normalizePermalink(permalink)
	code = strings.Trim(strings.TrimSpace(code), "/")
	if code == "" {
		return permalink
	}
	return "/" + code + permalink
}

// OutputPath returns the storage path of the page document: the permalink with exactly one
// trailing "/" followed by index.html.
func OutputPath(permalink string) string {
	permalink = normalizePermalink(permalink)
	if !strings.HasSuffix(permalink, "/") {
		permalink += "/"
	}
	return permalink + indexDocument
}

// AbsoluteURL returns https://{hostname}{permalink}, or the permalink alone when no
// hostname is configured.
func AbsoluteURL(hostname, permalink string) string {
	hostname = strings.Trim(strings.TrimSpace(hostname), "/")
	if hostname == "" {
		return permalink
	}
	return "https://" + hostname + permalink
}

// OpenGraphType is "website" for the home page and "article" for everything else.
func OpenGraphType(permalink string) string {
	if permalink == homePermalink {
		return "website"
	}
	return "article"
}

// PageTitle joins the page and site titles as "{page} - {site}", dropping whichever is empty.
func PageTitle(pageTitle, siteTitle string) string {
	pageTitle = strings.TrimSpace(pageTitle)
	siteTitle = strings.TrimSpace(siteTitle)
	switch {
	case pageTitle == "":
		return siteTitle
	case siteTitle == "":
		return pageTitle
	default:
		return pageTitle + " - " + siteTitle
	}
}

func normalizePermalink(permalink string) string {
	permalink = strings.TrimSpace(permalink)
	if permalink == "" {
		return homePermalink
	}
	if !strings.HasPrefix(permalink, "/") {
		permalink = "/" + permalink
	}
	return permalink
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
