package core

import (
	"fmt"

	"overtls-manager/internal/constants"
	"overtls-manager/internal/debuglog"
)

// LogBuffer keeps the most recent log records for the on-screen view.
type LogBuffer struct {
	limit int
	lines []debuglog.Record
}

// NewLogBuffer creates a buffer holding at most limit records; a
// non-positive limit uses constants.MaxLogLines.
func NewLogBuffer(limit int) *LogBuffer {
	if limit <= 0 {
		limit = constants.MaxLogLines
	}
	return &LogBuffer{limit: limit}
}

// Append adds records, evicting the oldest beyond the limit. It returns how
// many records were evicted.
func (b *LogBuffer) Append(records ...debuglog.Record) int {
	b.lines = append(b.lines, records...)
	over := len(b.lines) - b.limit
	if over <= 0 {
		return 0
	}
	b.lines = append(b.lines[:0:0], b.lines[over:]...)
	return over
}

// Lines returns the buffered records, oldest first.
func (b *LogBuffer) Lines() []debuglog.Record {
	return append([]debuglog.Record(nil), b.lines...)
}

// Len returns the number of buffered records.
func (b *LogBuffer) Len() int {
	return len(b.lines)
}

// Clear drops every record.
func (b *LogBuffer) Clear() {
	b.lines = nil
}

// FormatRecord renders a record as one log view line.
func FormatRecord(r debuglog.Record) string {
	return fmt.Sprintf("[%s %-5s %s] %s", r.Time.UTC().Format("2006-01-02T15:04:05Z"), r.Level, r.Origin, r.Message)
}
