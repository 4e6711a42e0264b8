package setup

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Jacobbrewer1/warden/pkg/conversation"
)

const (
	// MaxNameLength bounds panel and option names, the length of a select label.
	MaxNameLength = 100

	// MaxTitleLength is the embed title limit.
	MaxTitleLength = 256

	// MaxDescriptionLength is the embed description limit.
	MaxDescriptionLength = 4096

	// MaxQuestionLength is the modal input label limit.
	MaxQuestionLength = 45

	// MaxChoices is the number of entries a select menu can show.
	MaxChoices = 25

	// MaxOptions is how many options fit in the panel select menu.
	MaxOptions = MaxChoices
)

// NoneWord skips an optional answer.
const NoneWord = "none"

var (
	channelMention = regexp.MustCompile(`<#(\d+)>`)
	roleMention    = regexp.MustCompile(`<@&(\d+)>`)
)

// ParseChannelMention returns the id of the first channel mentioned in s.
func ParseChannelMention(s string) (string, bool) {
	m := channelMention.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ParseRoleMentions returns the ids of the roles mentioned in s, in order and
// without repeats.
func ParseRoleMentions(s string) []string {
	matches := roleMention.FindAllStringSubmatch(s, -1)
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m[1])
	}
	return unique(ids)
}

// mentionedRoles prefers the mentions the platform resolved and falls back
// to the ones written in the text.
func mentionedRoles(in conversation.Input) []string {
	if len(in.Roles) == 0 {
		return ParseRoleMentions(in.Text)
	}
	return unique(in.Roles)
}

func unique(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func requireText(what, value string, limit int) (string, error) {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return "", conversation.Invalid("The %s cannot be empty. Please try again.", what)
	case utf8.RuneCountInString(value) > limit:
		return "", conversation.Invalid("The %s can be at most %d characters. Please try again.", what, limit)
	}
	return value, nil
}

func validateQuestion(q string) (string, error) {
	q, err := requireText("question", q, MaxQuestionLength)
	if err != nil {
		return "", err
	}
	if strings.Contains(q, ",") {
		return "", conversation.Invalid("Questions cannot contain commas. Please rephrase the question.")
	}
	return q, nil
}

func isNone(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), NoneWord)
}
