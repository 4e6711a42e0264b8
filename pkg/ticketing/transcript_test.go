package ticketing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRenderTranscript(t *testing.T) {
	at := time.Date(2024, 5, 2, 8, 30, 0, 0, time.FixedZone("CEST", 2*60*60))

	tests := []struct {
		name    string
		history []HistoryEntry
		want    string
	}{
		{
			name: "empty",
			want: "",
		},
		{
			name: "utc timestamps",
			history: []HistoryEntry{
				{Timestamp: at, Author: "alice", Content: "hello"},
			},
			want: "[2024-05-02T06:30:00Z] alice: hello",
		},
		{
			name: "attachments",
			history: []HistoryEntry{
				{Timestamp: at, Author: "alice", Content: "see", Attachments: []string{"https://cdn/a.png"}},
				{Timestamp: at, Author: "bob", Content: ""},
			},
			want: "[2024-05-02T06:30:00Z] alice: see https://cdn/a.png\n[2024-05-02T06:30:00Z] bob: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, RenderTranscript(tt.history))
		})
	}
}
