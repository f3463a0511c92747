// Package domain contains core concepts of the chat system.
// This file defines history entries and their categories.
package domain

import "time"

// EntryKind tags a history entry with the event that produced it.
type EntryKind string

const (
	KindJoin   EntryKind = "join"
	KindLeave  EntryKind = "leave"
	KindChat   EntryKind = "chat"
	KindSystem EntryKind = "system"
)

// HistoryEntry is one immutable line of the broadcast record.
// Entries are never mutated or reordered after append.
type HistoryEntry struct {
	At   time.Time
	Kind EntryKind
	Text string
}
