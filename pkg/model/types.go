package model

import (
	"fmt"
	"time"
)

// Thread represents one unit of work performed by a coding agent.
// Threads are supplied by the backend and are read-only to the viewer.
type Thread struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Status       Status   `json:"status"`
	Workdir      string   `json:"workdir,omitempty"`
	Blocker      string   `json:"blocker,omitempty"`
	CostCents    int      `json:"cost_cents,omitempty"`
	LinkedIssues []string `json:"linked_issues,omitempty"`

	// LastUpdated is the human-readable recency string ("2 hours ago").
	// LastUpdatedDate is the machine timestamp (RFC 3339) used for
	// ordering; it may be empty or unparseable for threads imported from
	// older exports.
	LastUpdated     string `json:"last_updated,omitempty"`
	LastUpdatedDate string `json:"last_updated_date,omitempty"`

	// HandoffParentID names the thread this one was continued from, or
	// is empty if the thread started fresh. A thread has at most one
	// parent; a parent may have any number of children.
	HandoffParentID string `json:"handoff_parent_id,omitempty"`
}

// When parses LastUpdatedDate. Threads with a missing or unparseable
// timestamp get the zero time, which sorts them as oldest.
func (t Thread) When() time.Time {
	if t.LastUpdatedDate == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339Nano, t.LastUpdatedDate)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// HasParent reports whether the thread declares a handoff parent.
// The parent may still be absent from the current thread list; that is
// the topology builder's problem, not the model's.
func (t Thread) HasParent() bool {
	return t.HandoffParentID != ""
}

// Clone creates a deep copy of the thread
func (t Thread) Clone() Thread {
	clone := t
	if t.LinkedIssues != nil {
		clone.LinkedIssues = make([]string, len(t.LinkedIssues))
		copy(clone.LinkedIssues, t.LinkedIssues)
	}
	return clone
}

// Validate checks if the thread data is logically valid
func (t *Thread) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("thread ID cannot be empty")
	}
	if t.Title == "" {
		return fmt.Errorf("thread title cannot be empty")
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", t.Status)
	}
	if t.HandoffParentID == t.ID && t.ID != "" {
		// Self-handoffs are tolerated downstream (the cycle guard eats
		// them) but a backend producing one is misbehaving.
		return fmt.Errorf("thread %s names itself as handoff parent", t.ID)
	}
	return nil
}

// Status represents the current state of a thread
type Status string

const (
	StatusRunning Status = "running"
	StatusWaiting Status = "waiting"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// IsValid returns true if the status is a recognized value
func (s Status) IsValid() bool {
	switch s {
	case StatusRunning, StatusWaiting, StatusDone, StatusFailed:
		return true
	}
	return false
}

// IsTerminal returns true if the thread is no longer doing work
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusFailed
}

// IsActive returns true if the thread is running or waiting on input
func (s Status) IsActive() bool {
	return s == StatusRunning || s == StatusWaiting
}
