// Package canvas implements the link classification rules for the page
// shapes of a Canvas LMS site.
package canvas

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/fwojciec/coursegrab"
)

// Ensure Classifier implements coursegrab.Classifier.
var _ coursegrab.Classifier = (*Classifier)(nil)

var (
	filePreviewRegex    = regexp.MustCompile(`/files/(\d+)`)
	directDownloadRegex = regexp.MustCompile(`(?i)/download(\?|$)|\.(pdf|docx?|pptx?|xlsx?|zip|rar|7z|jpe?g|png|gif|mp4|mov|mp3|txt|csv|ipynb|md|rtf)$`)
	navSectionRegex     = regexp.MustCompile(`(?i)/(files|modules|assignments|quizzes|pages|announcements|discussions|discussion_topics|conferences|collaborations|grades|people|outcomes|settings|syllabus)/?$`)
	courseHomeRegex     = regexp.MustCompile(`/courses/\d+/?$`)
	moduleItemRegex     = regexp.MustCompile(`/modules/items/(\d+)`)
)

// chromeClasses mark tool launchers, skip links, menus and primary buttons.
var chromeClasses = []string{
	"context_external_tool",
	"skip-nav",
	"nav-skip-link",
	"menu-item",
	"Button--primary",
}

// intermediateItemTypes are module item types whose links lead to a page
// that may itself hold file links.
var intermediateItemTypes = map[string]bool{
	"Assignment":  true,
	"Page":        true,
	"Quiz":        true,
	"Discussion":  true,
	"ExternalUrl": true,
}

// Classification reasons recorded on candidate links.
const (
	ReasonDownloadAttr = "download attribute"
	ReasonKeyword      = "download keyword or extension"
	ReasonPreview      = "file preview"
	ReasonModuleItem   = "module item"
	ReasonWrapper      = "content wrapper"
)

// Classifier sorts the anchors of a Canvas page into direct downloads,
// intermediate pages and dropped links. It holds no state and is safe for
// concurrent use.
type Classifier struct{}

// NewClassifier creates a new Classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify partitions the snapshot's anchors. Each anchor lands in exactly
// one of the three lists.
func (c *Classifier) Classify(snapshot *coursegrab.PageSnapshot) coursegrab.Classification {
	var result coursegrab.Classification
	if snapshot == nil {
		return result
	}

	seenIntermediate := make(map[string]bool)

	for i := range snapshot.Anchors {
		a := &snapshot.Anchors[i]
		canonical := coursegrab.CanonicalURL(a.Href)

		if reason := excludeReason(a, canonical); reason != "" {
			result.Dropped = append(result.Dropped, coursegrab.DroppedLink{URL: canonical, Reason: reason})
			continue
		}

		if link, ok := classifyDirect(a, canonical); ok {
			result.Direct = append(result.Direct, link)
			continue
		}

		link, ok := classifyIntermediate(a, canonical)
		if !ok {
			result.Dropped = append(result.Dropped, coursegrab.DroppedLink{URL: canonical, Reason: coursegrab.DropIrrelevant})
			continue
		}

		if _, err := url.Parse(canonical); err != nil {
			result.Dropped = append(result.Dropped, coursegrab.DroppedLink{URL: canonical, Reason: coursegrab.DropMalformedLink})
			continue
		}
		if !sameOriginStrict(snapshot.URL, canonical) {
			result.Dropped = append(result.Dropped, coursegrab.DroppedLink{URL: canonical, Reason: coursegrab.DropCrossOrigin})
			continue
		}
		if seenIntermediate[canonical] {
			result.Dropped = append(result.Dropped, coursegrab.DroppedLink{URL: canonical, Reason: coursegrab.DropDuplicate})
			continue
		}
		seenIntermediate[canonical] = true
		result.Intermediate = append(result.Intermediate, link)
	}

	return result
}

// excludeReason returns why an anchor is excluded before classification,
// or "" if it is not.
func excludeReason(a *coursegrab.Anchor, canonical string) string {
	lower := strings.ToLower(canonical)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return coursegrab.DropNonHTTP
	}
	path := pathOnly(canonical)
	if navSectionRegex.MatchString(path) || courseHomeRegex.MatchString(path) {
		return coursegrab.DropNavigation
	}
	for _, class := range chromeClasses {
		if a.HasClass(class) {
			return coursegrab.DropChrome
		}
	}
	return ""
}

func classifyDirect(a *coursegrab.Anchor, canonical string) (coursegrab.CandidateLink, bool) {
	downloadAttr, hasDownload := a.Attr("download")
	previewLoc := filePreviewRegex.FindStringSubmatchIndex(canonical)

	href := canonical
	var reason string
	switch {
	case hasDownload:
		reason = ReasonDownloadAttr
	case directDownloadRegex.MatchString(canonical):
		reason = ReasonKeyword
	case previewLoc != nil:
		reason = ReasonPreview
		href = coursegrab.ForceDownloadURL(canonical, previewLoc[1])
	default:
		return coursegrab.CandidateLink{}, false
	}

	var fileID string
	if previewLoc != nil {
		fileID = canonical[previewLoc[2]:previewLoc[3]]
	}

	title, _ := a.Attr("title")
	contentType := contentTypeMarker(a)
	filename, source := coursegrab.ResolveFilename(coursegrab.FilenameSignals{
		CanonicalURL: href,
		DownloadAttr: downloadAttr,
		Title:        title,
		NameLabel:    a.NameLabel,
		LinkText:     a.Text,
		ContentType:  contentType,
		FileID:       fileID,
	})

	return coursegrab.CandidateLink{
		RawURL:          a.Href,
		CanonicalURL:    href,
		Kind:            coursegrab.LinkDirect,
		FilenameHint:    filename,
		HintSource:      source,
		ContentTypeHint: contentType,
		Reason:          reason,
	}, true
}

func classifyIntermediate(a *coursegrab.Anchor, canonical string) (coursegrab.CandidateLink, bool) {
	link := coursegrab.CandidateLink{
		RawURL:       a.Href,
		CanonicalURL: canonical,
		Kind:         coursegrab.LinkIntermediate,
	}

	if moduleItemRegex.MatchString(canonical) {
		link.Reason = ReasonModuleItem
		link.FilenameHint = moduleItemHint(a)
		if link.FilenameHint != "" {
			link.HintSource = coursegrab.SourceIntermediateHint
		}
		return link, true
	}

	switch a.Wrapper.Kind {
	case coursegrab.WrapperModuleItem:
		if !intermediateItemTypes[a.Wrapper.ItemType] {
			return coursegrab.CandidateLink{}, false
		}
	case coursegrab.WrapperUserContent, coursegrab.WrapperWikiContent:
	default:
		return coursegrab.CandidateLink{}, false
	}
	link.Reason = ReasonWrapper
	return link, true
}

// moduleItemHint returns the label of a module item link: its title
// attribute, then its inner title element, then its own text.
func moduleItemHint(a *coursegrab.Anchor) string {
	title, _ := a.Attr("title")
	for _, v := range []string{title, a.ItemTitle, a.OwnText} {
		if hint := coursegrab.CleanHint(v); hint != "" {
			return hint
		}
	}
	return ""
}

// contentTypeMarker returns the declared content type of a link.
func contentTypeMarker(a *coursegrab.Anchor) string {
	if v, ok := a.Attr("data-content-type"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	v, _ := a.Attr("type")
	return strings.TrimSpace(v)
}

// sameOriginStrict requires both addresses to be absolute and share scheme
// and host.
func sameOriginStrict(page, target string) bool {
	origin := coursegrab.Origin(page)
	return origin != "" && origin == coursegrab.Origin(target)
}

func pathOnly(s string) string {
	if i := strings.IndexAny(s, "?#"); i != -1 {
		s = s[:i]
	}
	return s
}
