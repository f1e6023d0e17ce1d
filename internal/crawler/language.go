package crawler

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

// languageSampleWords bounds how much text is fed to the detector.
const languageSampleWords = 200

// detectLanguage returns the ISO 639-3 code of text, or "" when the text is
// empty or the detection is not reliable.
func detectLanguage(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	if len(words) > languageSampleWords {
		words = words[:languageSampleWords]
	}

	info := whatlanggo.Detect(strings.Join(words, " "))
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6393()
}
