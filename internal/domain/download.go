package domain

import (
	"time"

	"github.com/google/uuid"
)

// DownloadState represents the current state of a simulated download
type DownloadState string

const (
	StateDownloading DownloadState = "downloading"
	StatePaused      DownloadState = "paused"
	StateCompleted   DownloadState = "completed"
)

// CreatedDateLayout is the display layout of CreatedDateLabel
const CreatedDateLayout = "Jan 2, 2006"

// Download represents one simulated background download
type Download struct {
	ID                string        `json:"id"`
	ContentID         string        `json:"content_id"`
	Kind              ContentKind   `json:"kind"`
	Title             string        `json:"title"`
	SeasonLabel       *string       `json:"season_label,omitempty"`
	ImageURL          string        `json:"image_url"`
	SizeLabel         string        `json:"size_label"`
	ProgressPercent   int           `json:"progress_percent"`
	RemainingEstimate *string       `json:"remaining_estimate"`
	State             DownloadState `json:"state"`
	CreatedDateLabel  string        `json:"created_date_label"`
	Owner             OwnerKey      `json:"owner"`
}

// NewDownload creates a download in the downloading state at 0%
func NewDownload(desc ContentDescriptor, owner OwnerKey, now time.Time) *Download {
	estimate := CalculatingLabel
	d := &Download{
		ID:                uuid.New().String(),
		ContentID:         desc.ContentID,
		Kind:              ClassifyContent(desc),
		Title:             desc.Title,
		ImageURL:          desc.ImageURL,
		SizeLabel:         desc.SizeLabel,
		ProgressPercent:   0,
		RemainingEstimate: &estimate,
		State:             StateDownloading,
		CreatedDateLabel:  now.Format(CreatedDateLayout),
		Owner:             owner,
	}
	if desc.SeasonLabel != nil {
		label := *desc.SeasonLabel
		d.SeasonLabel = &label
	}
	return d
}

// Advance adds step percent of progress. Reaching 100 completes the
// download in the same call. Returns true when the download completed.
func (d *Download) Advance(step, secondsPerPercent int) bool {
	if d.State != StateDownloading || step <= 0 {
		return false
	}

	d.ProgressPercent += step
	if d.ProgressPercent >= 100 {
		d.ProgressPercent = 100
		d.State = StateCompleted
		d.RemainingEstimate = nil
		return true
	}

	estimate := RemainingEstimate(d.ProgressPercent, secondsPerPercent)
	d.RemainingEstimate = &estimate
	return false
}

// Pause stops a downloading record and snapshots its remaining estimate
func (d *Download) Pause(secondsPerPercent int) bool {
	if d.State != StateDownloading {
		return false
	}
	d.State = StatePaused
	estimate := RemainingEstimate(d.ProgressPercent, secondsPerPercent)
	d.RemainingEstimate = &estimate
	return true
}

// Resume puts a paused record back into the downloading state
func (d *Download) Resume() bool {
	if d.State != StatePaused {
		return false
	}
	d.State = StateDownloading
	return true
}

// IsTerminal checks if the download is in a terminal state
func (d *Download) IsTerminal() bool {
	return d.State == StateCompleted
}

// IsActive checks if the download still needs a scheduler slot
func (d *Download) IsActive() bool {
	return d.State == StateDownloading || d.State == StatePaused
}

// Clone returns a deep copy safe to hand to readers
func (d *Download) Clone() Download {
	c := *d
	if d.SeasonLabel != nil {
		label := *d.SeasonLabel
		c.SeasonLabel = &label
	}
	if d.RemainingEstimate != nil {
		estimate := *d.RemainingEstimate
		c.RemainingEstimate = &estimate
	}
	return c
}

// ValidateState checks if a state value is known
func ValidateState(state DownloadState) bool {
	return state == StateDownloading || state == StatePaused || state == StateCompleted
}
