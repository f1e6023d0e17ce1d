package crawler

import (
	"regexp"
	"strings"
)

// originPattern matches the leading scheme://host of a URL.
var originPattern = regexp.MustCompile(`(?i)^(https?://[^/?#]+)`)

// Result is what the extractor finds on one page.
type Result struct {
	// Text is the visible text, whitespace-normalized.
	Text string

	// Images are absolute URLs from <img src>.
	Images []string

	// Videos are absolute URLs from <video src> and nested <source src>.
	Videos []string

	// Links are absolute URLs from <a href>.
	Links []string
}

// Origin returns the scheme://host prefix of pageURL, or pageURL itself
// when it has no recognizable origin.
func Origin(pageURL string) string {
	if m := originPattern.FindString(pageURL); m != "" {
		return m
	}
	return pageURL
}

// Resolve turns a src/href reference into an absolute URL.
// Absolute http(s) references are kept, protocol-relative ones take the
// origin's scheme, and root-relative ones are prefixed with the origin.
// Anything else, including plain relative paths, is dropped and Resolve
// returns false.
func Resolve(ref, origin string) (string, bool) {
	ref = strings.TrimSpace(ref)
	lower := strings.ToLower(ref)

	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return ref, true
	case strings.HasPrefix(ref, "//"):
		scheme := "https"
		if i := strings.Index(origin, "://"); i > 0 {
			scheme = origin[:i]
		}
		return scheme + ":" + ref, true
	case strings.HasPrefix(ref, "/"):
		return strings.TrimSuffix(origin, "/") + ref, true
	default:
		return "", false
	}
}

// Extract parses markup fetched from pageURL. It never fails: unreadable
// markup yields an empty Result and references that cannot be resolved are
// skipped. Each list keeps document order without duplicates.
func Extract(markup, pageURL string) Result {
	doc, err := ParseDocument(markup)
	if err != nil {
		return Result{}
	}
	return ExtractDocument(doc, pageURL)
}

// ExtractDocument applies the extraction rules to an already parsed document.
func ExtractDocument(doc Document, pageURL string) Result {
	origin := Origin(pageURL)

	images := newURLList(origin)
	for _, img := range doc.ElementsByTag("img") {
		images.addAttr(img, "src")
	}

	videos := newURLList(origin)
	for _, video := range doc.ElementsByTag("video") {
		videos.addAttr(video, "src")
		for _, source := range video.ElementsByTag("source") {
			videos.addAttr(source, "src")
		}
	}

	links := newURLList(origin)
	for _, a := range doc.ElementsByTag("a") {
		links.addAttr(a, "href")
	}

	return Result{
		Text:   doc.Text(),
		Images: images.urls,
		Videos: videos.urls,
		Links:  links.urls,
	}
}

// urlList accumulates resolved URLs in order, without duplicates.
type urlList struct {
	origin string
	seen   map[string]struct{}
	urls   []string
}

func newURLList(origin string) *urlList {
	return &urlList{origin: origin, seen: make(map[string]struct{})}
}

func (l *urlList) addAttr(e Element, attr string) {
	ref, ok := e.Attribute(attr)
	if !ok {
		return
	}
	u, ok := Resolve(ref, l.origin)
	if !ok {
		return
	}
	if _, dup := l.seen[u]; dup {
		return
	}
	l.seen[u] = struct{}{}
	l.urls = append(l.urls, u)
}
