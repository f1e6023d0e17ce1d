package media

import (
	exif "github.com/dsoprea/go-exif/v3"
)

// exifTags are the tags kept in an image's EXIF summary.
var exifTags = map[string]bool{
	"Make":             true,
	"Model":            true,
	"Software":         true,
	"DateTimeOriginal": true,
	"Artist":           true,
	"Copyright":        true,
	"GPSLatitude":      true,
	"GPSLatitudeRef":   true,
	"GPSLongitude":     true,
	"GPSLongitudeRef":  true,
}

// summarizeEXIF returns the identifying EXIF tags found in image data,
// or nil when the image carries none or cannot be parsed.
func summarizeEXIF(data []byte) map[string]string {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return nil
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return nil
	}

	summary := make(map[string]string)
	for _, entry := range entries {
		if !exifTags[entry.TagName] || entry.Formatted == "" {
			continue
		}
		if _, ok := summary[entry.TagName]; ok {
			continue // first IFD wins
		}
		summary[entry.TagName] = entry.Formatted
	}

	if len(summary) == 0 {
		return nil
	}
	return summary
}
