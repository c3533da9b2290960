package docstore

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	metadataExt  = ".json"
	contentExt   = ".txt"
	watermarkKey = "watermark"

	// maxTitleBytes bounds the sanitized title inside a storage name so that
	// "{id}_{title}.json" stays under the common 255-byte file name limit.
	maxTitleBytes = 200
)

// sanitizeTitle replaces every rune outside letters, numbers (any Unicode N class), '_', '-', '.' and ' ' with '_'.
func sanitizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		switch {
		case unicode.IsLetter(r), unicode.IsNumber(r), r == '_', r == '-', r == '.', r == ' ':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	s := b.String()
	if len(s) <= maxTitleBytes {
		return s
	}
	cut := maxTitleBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// baseName is the storage name shared by a document's metadata record and content blob.
func baseName(id int64, title string) string {
	return strconv.FormatInt(id, 10) + "_" + sanitizeTitle(title)
}

func metadataKey(base string) string { return base + metadataExt }

func contentKey(base string) string { return base + contentExt }

// parseKey extracts the id and base name from a collection key such as "12_Budget Report.json".
// Keys without ext, without a canonical positive "{id}_" prefix, are rejected.
func parseKey(key, ext string) (int64, string, bool) {
	base, ok := strings.CutSuffix(key, ext)
	if !ok {
		return 0, "", false
	}
	prefix, _, ok := strings.Cut(base, "_")
	if !ok || prefix == "" {
		return 0, "", false
	}
	for _, c := range prefix {
		if c < '0' || c > '9' {
			return 0, "", false
		}
	}
	id, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil || id <= 0 || strconv.FormatInt(id, 10) != prefix {
		return 0, "", false
	}
	return id, base, true
}
