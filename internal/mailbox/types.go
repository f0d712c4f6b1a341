package mailbox

import (
	"path/filepath"
	"strings"
	"time"
)

// MessageExt is the extension of every message file. Lookup compares it
// case-insensitively; delivery always writes it in upper case.
const MessageExt = ".MSG"

// maildirName is the per-user directory holding the state subdirectories.
const maildirName = "Maildir"

// State is the lifecycle state of a message, expressed only by which
// subdirectory holds the file.
type State int

const (
	// StateStaging holds messages still being written.
	StateStaging State = iota
	// StateUnread holds published messages awaiting consumption.
	StateUnread
	// StateRead holds consumed messages.
	StateRead
)

// States lists every state in lifecycle order.
func States() []State {
	return []State{StateStaging, StateUnread, StateRead}
}

// Dir returns the subdirectory name for the state.
func (s State) Dir() string {
	switch s {
	case StateStaging:
		return "tmp"
	case StateUnread:
		return "new"
	case StateRead:
		return "cur"
	default:
		return ""
	}
}

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateStaging:
		return "staging"
	case StateUnread:
		return "unread"
	case StateRead:
		return "read"
	default:
		return "unknown"
	}
}

// IsMessageName reports whether name follows the message file convention.
// Only the extension is checked.
func IsMessageName(name string) bool {
	if len(name) <= len(MessageExt) {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), MessageExt)
}

// Message describes a message file in one state.
type Message struct {
	Name    string    // file name, e.g. "6712AB01.MSG"
	State   State     // directory currently holding the file
	Size    int64     // content length in bytes
	ModTime time.Time // last modification time of the file
}

// Counts summarizes how many messages a mailbox holds in each state.
type Counts struct {
	Staging int
	Unread  int
	Read    int
}

// Total returns the number of messages across all states.
func (c Counts) Total() int {
	return c.Staging + c.Unread + c.Read
}
