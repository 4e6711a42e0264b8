package conversation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestComponentID(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		ok    bool
		ref   Ref
		value string
	}{
		{name: "with value", id: "conv:abc:3:yes", ok: true, ref: Ref{Conversation: "abc", Seq: 3}, value: "yes"},
		{name: "value with colon", id: "conv:abc:3:a:b", ok: true, ref: Ref{Conversation: "abc", Seq: 3}, value: "a:b"},
		{name: "no value", id: "conv:abc:1", ok: true, ref: Ref{Conversation: "abc", Seq: 1}},
		{name: "other prefix", id: "ticket_select:1", ok: false},
		{name: "bad seq", id: "conv:abc:x", ok: false},
		{name: "zero seq", id: "conv:abc:0", ok: false},
		{name: "empty id", id: "conv::1", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, value, ok := ParseComponentID(tt.id)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.ref, ref)
			require.Equal(t, tt.value, value)
		})
	}

	ref := Ref{Conversation: "abc", Seq: 2}
	require.Equal(t, "conv:abc:2:no", ComponentID(ref, "no"))
	require.Equal(t, "conv:abc:2", ComponentID(ref, ""))
	require.True(t, IsComponentID(ComponentID(ref, "")))
}

func TestPrompt_Timeout(t *testing.T) {
	require.Equal(t, DefaultTextTimeout, Prompt{}.timeout())
	require.Equal(t, DefaultChoiceTimeout, Prompt{Style: StyleSelect}.timeout())
	require.Equal(t, DefaultChoiceTimeout, Prompt{Style: StyleButtons}.timeout())
	require.Equal(t, time.Minute, Prompt{Timeout: time.Minute}.timeout())
}
