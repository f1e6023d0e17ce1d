package search

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nao1215/searchcrawl/internal/model"
)

// snippetRadius is how many characters a snippet keeps on each side of the
// match start.
const snippetRadius = 100

// TextResult is one page matching a keyword query.
type TextResult struct {
	URL     string   `json:"url"`
	Snippet string   `json:"snippet"`
	Images  []string `json:"images"`
	Videos  []string `json:"videos"`
}

// AssetSource lists stored assets.
type AssetSource interface {
	ListAssets(ctx context.Context, kind model.MediaKind) ([]model.MediaAsset, error)
}

// Engine answers queries. Keyword search reads the in-memory index; image
// and video search read the store directly, so they see every downloaded
// asset regardless of when the index was last rebuilt.
type Engine struct {
	index  *Index
	assets AssetSource
}

// NewEngine creates an Engine.
func NewEngine(index *Index, assets AssetSource) *Engine {
	return &Engine{index: index, assets: assets}
}

// SearchText returns every indexed page whose text contains query,
// ignoring case. An empty query matches every page.
func (e *Engine) SearchText(query string) []TextResult {
	needle := lowerRunes(query)

	results := make([]TextResult, 0)
	for _, entry := range e.index.entries() {
		snippet, ok := matchSnippet(entry.Text, needle)
		if !ok {
			continue
		}
		results = append(results, TextResult{
			URL:     entry.URL,
			Snippet: snippet,
			Images:  localPaths(model.MediaImage, entry.Images),
			Videos:  localPaths(model.MediaVideo, entry.Videos),
		})
	}
	return results
}

// SearchMedia returns the local paths of stored assets of kind whose source
// URL or filename contains query, ignoring case. Paths are unique and in
// download order.
func (e *Engine) SearchMedia(ctx context.Context, kind model.MediaKind, query string) ([]string, error) {
	assets, err := e.assets.ListAssets(ctx, kind)
	if err != nil {
		return nil, err
	}

	needle := lowerRunes(query)
	seen := make(map[string]struct{})
	paths := make([]string, 0)
	for _, a := range assets {
		if !strings.Contains(lowerRunes(a.AssetURL), needle) && !strings.Contains(lowerRunes(a.Filename), needle) {
			continue
		}
		p := a.LocalPath()
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		paths = append(paths, p)
	}
	return paths, nil
}

// matchSnippet finds the first case-insensitive occurrence of needle (already
// lowered) in text and returns the surrounding window from the original text.
func matchSnippet(text, needle string) (string, bool) {
	lowered := lowerRunes(text)
	byteIdx := strings.Index(lowered, needle)
	if byteIdx < 0 {
		return "", false
	}

	// lowerRunes maps rune to rune, so rune offsets agree between the two.
	runes := []rune(text)
	idx := utf8.RuneCountInString(lowered[:byteIdx])
	start := max(idx-snippetRadius, 0)
	end := min(idx+snippetRadius, len(runes))

	snippet := string(runes[start:end])
	snippet = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(snippet)
	return snippet, true
}

// lowerRunes lowercases s one rune at a time. Unlike strings.ToLower it
// never changes the number of runes, which keeps offsets comparable.
func lowerRunes(s string) string {
	return strings.Map(unicode.ToLower, s)
}

// localPaths rewrites source asset URLs to their serving paths.
func localPaths(kind model.MediaKind, assetURLs []string) []string {
	paths := make([]string, 0, len(assetURLs))
	for _, u := range assetURLs {
		name := model.FilenameFromURL(u)
		if name == "" {
			continue
		}
		paths = append(paths, kind.LocalPath(name))
	}
	return paths
}
