package queue

import (
	"strings"
	"time"

	"larder/internal/recipe"
)

// Status represents the lifecycle of a queue item.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusUploading Status = "uploading"
	StatusAnalyzing Status = "analyzing"
	StatusStoring   Status = "storing"
	StatusComplete  Status = "complete"
	StatusError     Status = "error"
)

var allStatuses = []Status{
	StatusQueued,
	StatusUploading,
	StatusAnalyzing,
	StatusStoring,
	StatusComplete,
	StatusError,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// Terminal reports whether no further transitions occur for the status.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusError
}

// Item tracks one submitted file through the pipeline. Exactly one of
// {Record, Error} is set once the item reaches a terminal status. Progress
// only increases over an item's lifetime, and ImageURL is write-once.
type Item struct {
	ID         string
	FileName   string
	SourcePath string
	Status     Status
	Progress   int
	ImageURL   string
	Record     *recipe.Record
	Error      string
	CreatedAt  time.Time
	Viewed     bool
}

// Terminal reports whether the item has finished processing.
func (i Item) Terminal() bool {
	return i.Status.Terminal()
}

func (i Item) clone() Item {
	cp := i
	if i.Record != nil {
		rec := *i.Record
		cp.Record = &rec
	}
	return cp
}
