package main

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/muesli/reflow/truncate"
)

// newRunID returns a sortable run identifier: start time plus a random suffix.
func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	s := strings.ReplaceAll(id.String(), "-", "")
	return time.Now().Format("20060102-150405") + "-" + s[len(s)-8:]
}

// truncateDisplay shortens s to width cells, marking the cut.
func truncateDisplay(s string, width int) string {
	return truncate.StringWithTail(s, uint(width), "...")
}
