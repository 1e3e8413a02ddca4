// Package events defines the ordered event stream emitted by a scan or
// search job: the asynchronous API a surrounding display attaches to
// instead of linking the engine's internals directly.
package events

import "fmt"

// Kind discriminates the variants of Event.
type Kind int

const (
	// InfoKind carries a human-readable progress marker.
	InfoKind Kind = iota
	// ExceptionKind carries a non-fatal per-file or per-subsystem error.
	ExceptionKind
	// ProgressKind carries a monotonic 0-100 percentage for the running job.
	ProgressKind
	// NewTextFileKind is emitted once per file admitted to the index during a scan.
	NewTextFileKind
	// IndexingFinishedKind is the terminal event of a scan.
	IndexingFinishedKind
	// UpdateResultsKind is emitted once per matching file during a search.
	UpdateResultsKind
	// SearchingFinishedKind is the terminal event of a search.
	SearchingFinishedKind
)

// Event is a tagged union; only the fields relevant to Kind are
// populated.
type Event struct {
	Kind    Kind
	Text    string // InfoKind, ExceptionKind
	Err     error  // ExceptionKind, set when the failure has a typed cause
	Percent int    // ProgressKind
	Path    string // NewTextFileKind, UpdateResultsKind (directory-relative)
	Offsets []int  // UpdateResultsKind
}

// WatchSubscriptionExhaustedError reports that the watcher bridge could
// not register a new fsnotify subscription, because the platform's watch
// limit was reached. Further subscriptions are skipped until the next
// scan.
type WatchSubscriptionExhaustedError struct {
	Path string
	Err  error
}

func (e *WatchSubscriptionExhaustedError) Error() string {
	return fmt.Sprintf("watch subscription exhausted at %s: %v", e.Path, e.Err)
}

func (e *WatchSubscriptionExhaustedError) Unwrap() error { return e.Err }

// Sink receives events in emission order. Implementations must not block
// the emitting job indefinitely; a buffered channel-backed sink is the
// usual choice.
type Sink interface {
	Emit(Event)
}

func Info(text string) Event {
	return Event{Kind: InfoKind, Text: text}
}

func ExceptionOccurred(text string) Event {
	return Event{Kind: ExceptionKind, Text: text}
}

// ExceptionOccurredErr wraps a typed error as an ExceptionKind event, so
// a caller can errors.As its way back to the cause instead of matching on
// Text.
func ExceptionOccurredErr(err error) Event {
	return Event{Kind: ExceptionKind, Text: err.Error(), Err: err}
}

func Progress(percent int) Event {
	return Event{Kind: ProgressKind, Percent: percent}
}

func NewTextFile(path string) Event {
	return Event{Kind: NewTextFileKind, Path: path}
}

func IndexingFinished() Event {
	return Event{Kind: IndexingFinishedKind}
}

func UpdateResults(path string, offsets []int) Event {
	return Event{Kind: UpdateResultsKind, Path: path, Offsets: offsets}
}

func SearchingFinished() Event {
	return Event{Kind: SearchingFinishedKind}
}
