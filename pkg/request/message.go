package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Jacobbrewer1/warden/pkg/logging"
)

// ErrInternalServer is the message of a response to a failed handler.
var ErrInternalServer = errors.New("internal server error")

// Message represents a message response.
type Message struct {
	Message string `json:"Message" xml:"Message"`
}

// NewMessage creates a new Message.
func NewMessage(message string, args ...any) *Message {
	var msg string
	if len(args) > 0 {
		msg = fmt.Sprintf(message, args...)
	} else {
		msg = message
	}
	return &Message{
		Message: msg,
	}
}

// Encode writes v as the JSON body of a response with the given status.
func Encode(l *slog.Logger, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		l.Error("Error encoding response", slog.String(logging.KeyError, err.Error()))
	}
}
