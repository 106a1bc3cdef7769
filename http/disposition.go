package http

import (
	"mime"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
)

var (
	extendedFilenameRegex = regexp.MustCompile(`(?i)filename\*\s*=\s*([^';]*)'[^']*'([^;]+)`)
	quotedFilenameRegex   = regexp.MustCompile(`(?i)filename\s*=\s*"((?:[^"\\]|\\.)*)"`)
	bareFilenameRegex     = regexp.MustCompile(`(?i)filename\s*=\s*([^;"\s]+)`)
	escapedCharRegex      = regexp.MustCompile(`\\(.)`)
)

// ParseContentDisposition extracts the filename from a Content-Disposition
// header value. The RFC 5987 extended form is preferred, then a quoted
// value, then a bare token. Path separators in the result become "_".
// Returns "" when no filename is present.
func ParseContentDisposition(header string) string {
	if header == "" {
		return ""
	}

	var name string
	if m := extendedFilenameRegex.FindStringSubmatch(header); m != nil {
		name = decodeExtended(m[1], strings.TrimSpace(m[2]))
	}
	if name == "" {
		if m := quotedFilenameRegex.FindStringSubmatch(header); m != nil {
			name = decodeParam(escapedCharRegex.ReplaceAllString(m[1], "$1"))
		}
	}
	if name == "" {
		if m := bareFilenameRegex.FindStringSubmatch(header); m != nil {
			name = decodeParam(m[1])
		}
	}

	name = strings.NewReplacer("/", "_", `\`, "_").Replace(strings.TrimSpace(name))
	return name
}

// decodeExtended decodes a charset'lang'percent-encoded value.
func decodeExtended(charset, value string) string {
	decoded, err := url.PathUnescape(value)
	if err != nil {
		return ""
	}
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "gbk", "gb2312", "gb18030":
		if s := decodeGBK(decoded); s != "" {
			return s
		}
	}
	return decoded
}

// decodeParam decodes MIME encoded-words and percent escapes, falling back
// to GBK when the result is not valid UTF-8.
func decodeParam(value string) string {
	if strings.HasPrefix(value, "=?") {
		dec := new(mime.WordDecoder)
		if s, err := dec.Decode(strings.Replace(value, "UTF8", "UTF-8", 1)); err == nil {
			return s
		}
	}
	if strings.Contains(value, "%") {
		if s, err := url.PathUnescape(value); err == nil {
			value = s
		}
	}
	if !utf8.ValidString(value) {
		if s := decodeGBK(value); s != "" {
			return s
		}
	}
	return value
}

func decodeGBK(s string) string {
	out, err := simplifiedchinese.GBK.NewDecoder().String(s)
	if err != nil || !utf8.ValidString(out) {
		return ""
	}
	return out
}
