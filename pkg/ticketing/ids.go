package ticketing

import (
	"strconv"
	"strings"
)

// Custom id prefixes of the ticket components.
const (
	PrefixSelect = "ticket_select"

	PrefixModal = "ticket_modal"

	PrefixConfirm = "close_confirm"
)

// SelectID is the custom id of the option select of a panel.
func SelectID(panelID int64) string {
	return PrefixSelect + ":" + strconv.FormatInt(panelID, 10)
}

// ModalID is the custom id of the question modal of an option.
func ModalID(optionID int64) string {
	return PrefixModal + ":" + strconv.FormatInt(optionID, 10)
}

// ConfirmID is the custom id of the confirm button of a close request.
func ConfirmID(requestID string) string {
	return PrefixConfirm + ":" + requestID
}

// SplitID splits a custom id into its prefix and argument.
func SplitID(customID string) (prefix, arg string) {
	prefix, arg, _ = strings.Cut(customID, ":")
	return prefix, arg
}

// ParseNumericID returns the numeric argument of a custom id with the given prefix.
func ParseNumericID(customID, prefix string) (int64, bool) {
	p, arg := SplitID(customID)
	if p != prefix {
		return 0, false
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
