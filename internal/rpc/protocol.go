package rpc

// ScanParams is the payload of a "scan" request.
type ScanParams struct {
	Root string `json:"root"`
}

// SearchParams is the payload of a "search" request.
type SearchParams struct {
	Needle string `json:"needle"`
}

// InfoParams is the payload of an "event/info" notification.
type InfoParams struct {
	Text string `json:"text"`
}

// ExceptionParams is the payload of an "event/exception" notification.
type ExceptionParams struct {
	Text string `json:"text"`
}

// ProgressParams is the payload of an "event/progress" notification.
type ProgressParams struct {
	Percent int `json:"percent"`
}

// NewTextFileParams is the payload of an "event/newTextFile" notification.
type NewTextFileParams struct {
	Path string `json:"path"`
}

// UpdateResultsParams is the payload of an "event/updateResults"
// notification: a matching file and every byte offset of the needle
// within it.
type UpdateResultsParams struct {
	Path    string `json:"path"`
	Offsets []int  `json:"offsets"`
}
