package model

import (
	"net/url"
	"strings"
)

// MediaKind distinguishes the two kinds of binary assets the crawler keeps.
type MediaKind int

const (
	// MediaImage is an asset referenced by an <img> element.
	MediaImage MediaKind = iota
	// MediaVideo is an asset referenced by a <video> element or its <source> children.
	MediaVideo
)

// MediaKinds lists every kind in a stable order.
var MediaKinds = []MediaKind{MediaImage, MediaVideo}

// String returns "image" or "video".
func (k MediaKind) String() string {
	switch k {
	case MediaImage:
		return "image"
	case MediaVideo:
		return "video"
	default:
		return "unknown"
	}
}

// Plural returns the plural name, which doubles as the storage directory,
// the table name, and the serving route segment.
func (k MediaKind) Plural() string {
	return k.String() + "s"
}

// Route returns the local serving prefix, e.g. "/images/".
func (k MediaKind) Route() string {
	return "/" + k.Plural() + "/"
}

// LocalPath returns the path under which a stored file is served.
func (k MediaKind) LocalPath(filename string) string {
	return k.Route() + filename
}

// MediaAsset records one downloaded asset.
// At most one record exists per AssetURL; PageURL is the first page that
// referenced it.
type MediaAsset struct {
	// ID is the store's row identifier; rows are returned in ID order.
	ID int64 `json:"id"`

	// Kind is image or video.
	Kind MediaKind `json:"kind"`

	// PageURL is the page that first referenced the asset.
	PageURL string `json:"page_url"`

	// AssetURL is the absolute source URL and the dedup key.
	AssetURL string `json:"asset_url"`

	// Filename is the name of the file in the kind's storage directory.
	Filename string `json:"filename"`

	// ContentHash is the hex SHA3-256 digest of the downloaded bytes.
	ContentHash string `json:"content_hash,omitempty"`

	// EXIF holds a few identifying EXIF tags for images, keyed by tag name.
	EXIF map[string]string `json:"exif,omitempty"`
}

// LocalPath returns the asset's serving path, e.g. "/images/x.png".
func (a MediaAsset) LocalPath() string {
	return a.Kind.LocalPath(a.Filename)
}

// FilenameFromURL derives the local filename of an asset: the last segment
// of the URL path, without query or fragment. It returns an empty string
// when no usable name exists. Distinct URLs sharing a final segment map to
// the same filename.
func FilenameFromURL(assetURL string) string {
	path := assetURL
	if u, err := url.Parse(assetURL); err == nil {
		path = u.Path
	} else if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	name := path[strings.LastIndex(path, "/")+1:]
	if name == "." || name == ".." || strings.ContainsRune(name, '\\') {
		return ""
	}
	return name
}
