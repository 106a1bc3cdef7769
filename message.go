package coursegrab

import (
	"encoding/base64"
	"fmt"
)

// Actions carried in boundary request messages.
const (
	ActionFetchFile      = "fetchFile"
	ActionRunScript      = "runScript"
	ActionZipAndDownload = "zipAndDownload"
)

// MaxTransferChars is the default ceiling on the encoded payload of a single
// fetch response, about 11 MB of binary data.
const MaxTransferChars = 15_000_000

// SkippedTooLargeMessage is the error text of a size-guard response.
const SkippedTooLargeMessage = "File skipped: too large for messaging"

// CrossOriginMessagePrefix starts the error text of a failed fetch that
// followed a redirect off the requesting origin.
const CrossOriginMessagePrefix = "Failed to fetch (possible CORS rejection after redirect)"

// FetchRequest asks the privileged fetch boundary for one file.
type FetchRequest struct {
	Action string `json:"action"`
	URL    string `json:"url"`
}

// NewFetchRequest returns a fetchFile request for url.
func NewFetchRequest(url string) FetchRequest {
	return FetchRequest{Action: ActionFetchFile, URL: url}
}

// FetchResponse is the transport shape returned by the fetch boundary.
type FetchResponse struct {
	Success            bool    `json:"success"`
	Skipped            bool    `json:"skipped"`
	Base64             string  `json:"base64,omitempty"`
	ContentType        string  `json:"contentType,omitempty"`
	FilenameFromHeader *string `json:"filenameFromHeader"`
	Error              string  `json:"error,omitempty"`
}

// SkippedResponse returns the size-guard response.
func SkippedResponse() FetchResponse {
	return FetchResponse{Success: true, Skipped: true, Error: SkippedTooLargeMessage}
}

// FailedResponse returns a failure response carrying err's message.
func FailedResponse(err error) FetchResponse {
	msg := ErrorMessage(err)
	if ErrorCode(err) == EINTERNAL {
		msg = err.Error()
	}
	return FetchResponse{Success: false, Error: msg}
}

// DecodeFetchResponse converts a transport response into a FetchResult.
// A successful response whose payload is missing, undecodable, or empty is
// reported as failed.
func DecodeFetchResponse(resp FetchResponse) FetchResult {
	switch {
	case !resp.Success:
		reason := resp.Error
		if reason == "" {
			reason = "fetch failed"
		}
		return FetchResult{Outcome: FetchFailed, Reason: reason}
	case resp.Skipped:
		reason := resp.Error
		if reason == "" {
			reason = SkippedTooLargeMessage
		}
		return FetchResult{Outcome: FetchSkipped, Reason: reason}
	}

	data, err := base64.StdEncoding.DecodeString(resp.Base64)
	if err != nil {
		return FetchResult{Outcome: FetchFailed, Reason: fmt.Sprintf("decode payload: %v", err)}
	}
	if len(data) == 0 {
		return FetchResult{Outcome: FetchFailed, Reason: "empty payload"}
	}

	result := FetchResult{
		Outcome:     FetchOK,
		Data:        data,
		ContentType: resp.ContentType,
	}
	if resp.FilenameFromHeader != nil {
		result.HeaderFilename = *resp.FilenameFromHeader
	}
	return result
}

// CourseInfo is one entry of a runScript message.
type CourseInfo struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// RunScriptMessage starts a run against a pre-discovered course list.
type RunScriptMessage struct {
	Action      string       `json:"action"`
	CoursesInfo []CourseInfo `json:"coursesInfo"`
}

// NewRunScriptMessage builds a runScript message from discovered courses.
func NewRunScriptMessage(courses []Course) RunScriptMessage {
	msg := RunScriptMessage{Action: ActionRunScript, CoursesInfo: make([]CourseInfo, 0, len(courses))}
	for _, c := range courses {
		msg.CoursesInfo = append(msg.CoursesInfo, CourseInfo{Path: c.Path, Name: c.Name})
	}
	return msg
}

// Courses converts the message back into validated courses, deduplicated by
// path in message order.
func (m *RunScriptMessage) Courses() ([]Course, error) {
	if m.Action != "" && m.Action != ActionRunScript {
		return nil, Errorf(EINVALID, "unexpected action %q", m.Action)
	}
	seen := make(map[string]bool)
	var courses []Course
	for _, info := range m.CoursesInfo {
		c, err := NewCourse(info.Path, info.Name)
		if err != nil {
			return nil, err
		}
		if seen[c.Path] {
			continue
		}
		seen[c.Path] = true
		courses = append(courses, c)
	}
	return courses, nil
}

// DownloadFile is one file entry of a zipAndDownload message.
type DownloadFile struct {
	Href        string `json:"href"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType,omitempty"`
}

// CourseDownloads is the per-course payload of a zipAndDownload message.
type CourseDownloads struct {
	CourseName string         `json:"courseName"`
	Files      []DownloadFile `json:"files"`
}

// ZipAndDownloadMessage hands a finished dataset to the archive stage,
// keyed by course id.
type ZipAndDownloadMessage struct {
	Action       string                     `json:"action"`
	AllDownloads map[string]CourseDownloads `json:"allDownloads"`
}

// StatusMessage is one best-effort status notification.
type StatusMessage struct {
	StatusUpdate string `json:"statusUpdate"`
}
