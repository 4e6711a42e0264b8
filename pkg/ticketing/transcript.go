package ticketing

import (
	"strings"
	"time"
)

// RenderTranscript writes the history as one "[timestamp] author: content"
// line per message, attachments appended by URL.
func RenderTranscript(history []HistoryEntry) string {
	var sb strings.Builder
	for i, m := range history {
		if i > 0 {
			sb.WriteByte('\n')
		}

		sb.WriteString("[")
		sb.WriteString(m.Timestamp.UTC().Format(time.RFC3339))
		sb.WriteString("] ")
		sb.WriteString(m.Author)
		sb.WriteString(": ")
		sb.WriteString(m.Content)
		for _, a := range m.Attachments {
			sb.WriteString(" ")
			sb.WriteString(a)
		}
	}
	return sb.String()
}
