package coursegrab

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// FilenameSource records which signal produced a filename. Higher values are
// stronger signals.
type FilenameSource int

// Filename signals, weakest first.
const (
	SourceNone FilenameSource = iota
	SourceTimestamp
	SourceFileID
	SourceLinkText
	SourceNameLabel
	SourceTitle
	SourceIntermediateHint
	SourceDownloadAttr
)

// String returns a short name for logs.
func (s FilenameSource) String() string {
	switch s {
	case SourceTimestamp:
		return "timestamp"
	case SourceFileID:
		return "file id"
	case SourceLinkText:
		return "link text"
	case SourceNameLabel:
		return "name label"
	case SourceTitle:
		return "title"
	case SourceIntermediateHint:
		return "intermediate hint"
	case SourceDownloadAttr:
		return "download attribute"
	default:
		return "none"
	}
}

// UnknownExtension is appended when no extension can be determined.
const UnknownExtension = "unknown"

var (
	extensionRegex = regexp.MustCompile(`\.([a-zA-Z0-9]{1,5})$`)
	reservedRegex  = regexp.MustCompile(`[\\/:*?"<>|\x00-\x1f]`)
	spaceRegex     = regexp.MustCompile(`\s+`)
	digitsRegex    = regexp.MustCompile(`^\d+$`)
)

// FilenameSignals are the inputs available for naming a direct download.
type FilenameSignals struct {
	CanonicalURL string
	DownloadAttr string
	Title        string
	NameLabel    string
	LinkText     string
	ContentType  string
	FileID       string
}

// ResolveFilename derives a sanitized filename with exactly one extension
// from the strongest available signal. The base name is taken from, in
// order: a non-trivial download attribute, a title not mentioning "module",
// the file-name label, the link text (unless empty, numeric, or starting
// with "download"), the file id, and finally a timestamp placeholder.
func ResolveFilename(sig FilenameSignals) (string, FilenameSource) {
	base, source := resolveBase(sig)
	if !HasExtension(base) {
		base += "." + resolveExtension(sig.ContentType, sig.CanonicalURL)
	}
	return SanitizeFilename(base), source
}

func resolveBase(sig FilenameSignals) (string, FilenameSource) {
	if v := cleanBase(sig.DownloadAttr); v != "" && !strings.EqualFold(v, "true") {
		return v, SourceDownloadAttr
	}
	if v := cleanBase(sig.Title); v != "" && !strings.Contains(strings.ToLower(v), "module") {
		return v, SourceTitle
	}
	if v := cleanBase(sig.NameLabel); v != "" {
		return v, SourceNameLabel
	}
	if v := cleanBase(sig.LinkText); v != "" &&
		!strings.HasPrefix(strings.ToLower(v), "download") &&
		!digitsRegex.MatchString(v) {
		return v, SourceLinkText
	}
	if v := cleanBase(sig.FileID); v != "" {
		return v, SourceFileID
	}
	return placeholderBase(), SourceTimestamp
}

func resolveExtension(contentType, canonicalURL string) string {
	if ext := ExtensionForContentType(contentType); ext != "" {
		return ext
	}
	if ext := urlExtension(canonicalURL); ext != "" {
		return ext
	}
	return UnknownExtension
}

// ExtensionForContentType maps a declared content type to an extension.
// Returns "" when the type is empty or not in the table.
func ExtensionForContentType(contentType string) string {
	ct := strings.ToLower(contentType)
	switch {
	case ct == "":
		return ""
	case strings.Contains(ct, "pdf"):
		return "pdf"
	case strings.Contains(ct, "word"):
		return "docx"
	case strings.Contains(ct, "powerpoint"), strings.Contains(ct, "presentation"):
		return "pptx"
	case strings.Contains(ct, "excel"), strings.Contains(ct, "spreadsheet"):
		return "xlsx"
	case strings.Contains(ct, "zip"):
		return "zip"
	case strings.Contains(ct, "image/jp"):
		return "jpg"
	case strings.Contains(ct, "image/png"):
		return "png"
	case strings.Contains(ct, "image"):
		return "jpg"
	case strings.Contains(ct, "video"):
		return "mp4"
	case strings.Contains(ct, "text"):
		return "txt"
	default:
		return ""
	}
}

// urlExtension sniffs an extension-looking suffix from the URL path.
func urlExtension(rawURL string) string {
	path := rawURL
	if i := strings.IndexAny(path, "?#"); i != -1 {
		path = path[:i]
	}
	if i := strings.Index(path, "://"); i != -1 {
		path = path[i+3:]
		slash := strings.Index(path, "/")
		if slash == -1 {
			return ""
		}
		path = path[slash:]
	}
	if m := extensionRegex.FindStringSubmatch(path); m != nil {
		return m[1]
	}
	return ""
}

// HasExtension reports whether name ends in a ".ext" suffix of one to five
// alphanumeric characters, or in the ".unknown" marker.
func HasExtension(name string) bool {
	return Extension(name) != ""
}

// Extension returns the extension of name without the dot, or "".
func Extension(name string) string {
	if len(name) > len(UnknownExtension)+1 && strings.HasSuffix(name, "."+UnknownExtension) {
		return UnknownExtension
	}
	if m := extensionRegex.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	return ""
}

// ApplyFilenameHint names a file found behind an intermediate page after the
// page's label. The hint keeps its own extension when it has one; otherwise
// it borrows the extension already resolved for the file.
func ApplyFilenameHint(hint, resolved string) string {
	base := cleanBase(hint)
	if base == "" {
		return SanitizeFilename(resolved)
	}
	if !HasExtension(base) {
		ext := Extension(resolved)
		if ext == "" {
			ext = UnknownExtension
		}
		base += "." + ext
	}
	return SanitizeFilename(base)
}

// CleanHint trims whitespace and leading/trailing dots from a label.
func CleanHint(s string) string {
	return cleanBase(s)
}

// SanitizeFilename makes name safe to use as an archive entry: reserved
// characters and path separators become "_", whitespace runs collapse to a
// single space, and leading/trailing dots and spaces are removed. An empty
// result is replaced with a timestamp-based name. SanitizeFilename is
// idempotent.
func SanitizeFilename(name string) string {
	s := spaceRegex.ReplaceAllString(name, " ")
	s = reservedRegex.ReplaceAllString(s, "_")
	s = cleanBase(s)
	if s == "" || s == "." {
		return placeholderBase() + "." + UnknownExtension
	}
	return s
}

// SanitizeName replaces reserved characters in a display name without the
// filename fallbacks. It is used for course folder and archive names.
func SanitizeName(name string) string {
	s := spaceRegex.ReplaceAllString(name, " ")
	s = reservedRegex.ReplaceAllString(s, "_")
	return strings.TrimSpace(s)
}

// cleanBase trims spaces and dots from both ends until stable.
func cleanBase(s string) string {
	for {
		t := strings.Trim(strings.TrimSpace(s), ".")
		if t == s {
			return t
		}
		s = t
	}
}

func placeholderBase() string {
	return fmt.Sprintf("file_%d", time.Now().UnixMilli())
}
