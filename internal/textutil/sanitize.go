package textutil

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	separatorReplacer = strings.NewReplacer("/", "_", "\\", "_")
	whitespacePattern = regexp.MustCompile(`\s+`)
	unsafeCharPattern = regexp.MustCompile(`[\x00<>:"/\\|?*]`)
)

// SanitizeFileName makes a rendered name safe to use as a single path
// segment. Path separators become underscores, whitespace runs collapse to
// one space, and the characters Windows and SMB shares reject are removed.
func SanitizeFileName(name string) string {
	name = separatorReplacer.Replace(name)
	name = strings.TrimSpace(CollapseWhitespace(name))
	return unsafeCharPattern.ReplaceAllString(name, "")
}

// CollapseWhitespace replaces every run of whitespace with a single space.
func CollapseWhitespace(value string) string {
	return whitespacePattern.ReplaceAllString(value, " ")
}

// FoldTitle lower-cases value and strips combining marks so "Amélie" and
// "Amelie" produce the same key.
func FoldTitle(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, value)
	if err != nil {
		folded = value
	}
	return strings.ToLower(folded)
}

// MaxNameBytes is the NAME_MAX of common Linux and macOS filesystems.
const MaxNameBytes = 255

// TruncateKeepingExt shortens name to at most limit runes and MaxNameBytes
// bytes while keeping the trailing ext (including its dot) intact. Cuts fall
// on rune boundaries and trailing spaces left by the cut are trimmed. A
// non-positive limit disables the rune bound only. The extension is never
// shortened, so an ext longer than limit yields just the ext.
func TruncateKeepingExt(name, ext string, limit int) string {
	r := []rune(name)
	if (limit <= 0 || len(r) <= limit) && len(name) <= MaxNameBytes {
		return name
	}
	base := r
	if strings.HasSuffix(name, ext) {
		base = []rune(strings.TrimSuffix(name, ext))
	}
	if limit > 0 {
		if keep := limit - utf8.RuneCountInString(ext); len(base) > keep {
			base = base[:max(keep, 0)]
		}
	}
	budget := MaxNameBytes - len(ext)
	for len(base) > 0 && len(string(base)) > budget {
		base = base[:len(base)-1]
	}
	return strings.TrimRight(string(base), " ") + ext
}
