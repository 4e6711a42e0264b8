package discord

import (
	"strconv"
	"strings"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/warden/pkg/conversation"
	"github.com/Jacobbrewer1/warden/pkg/entities"
	"github.com/Jacobbrewer1/warden/pkg/ticketing"
)

// questionPrefix starts the custom id of every modal text input.
const questionPrefix = "question_"

// maxInputLength is the longest answer a modal text input accepts.
const maxInputLength = 1024

// MessageEvent converts a guild message into a conversation event. Messages
// of bots and direct messages are ignored.
func MessageEvent(m *discordgo.MessageCreate) (conversation.Event, bool) {
	if m == nil || m.Message == nil || m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return conversation.Event{}, false
	}
	return conversation.Event{
		Kind:      conversation.EventMessage,
		GuildID:   m.GuildID,
		UserID:    m.Author.ID,
		ChannelID: m.ChannelID,
		Text:      m.Content,
		Roles:     m.MentionRoles,
	}, true
}

// ComponentEvent converts a click on a conversation prompt into a
// conversation event.
func ComponentEvent(i *discordgo.InteractionCreate) (conversation.Event, bool) {
	if i == nil || i.Interaction == nil || i.Type != discordgo.InteractionMessageComponent || i.GuildID == "" {
		return conversation.Event{}, false
	}

	data := i.MessageComponentData()
	ref, value, ok := conversation.ParseComponentID(data.CustomID)
	if !ok {
		return conversation.Event{}, false
	}
	if value == "" && len(data.Values) > 0 {
		value = data.Values[0]
	}

	return conversation.Event{
		Kind:      conversation.EventComponent,
		GuildID:   i.GuildID,
		UserID:    InteractionUser(i).ID,
		ChannelID: i.ChannelID,
		Ref:       ref,
		Value:     value,
	}, true
}

// InteractionUser returns who triggered the interaction.
func InteractionUser(i *discordgo.InteractionCreate) ticketing.User {
	var u *discordgo.User
	switch {
	case i.Member != nil && i.Member.User != nil:
		u = i.Member.User
	case i.User != nil:
		u = i.User
	default:
		return ticketing.User{}
	}
	return ticketing.User{ID: u.ID, Name: u.Username}
}

// IsAdministrator reports whether the member of the interaction has the
// administrator permission.
func IsAdministrator(i *discordgo.InteractionCreate) bool {
	return i.Member != nil && i.Member.Permissions&discordgo.PermissionAdministrator != 0
}

// QuestionModal builds the modal that asks the questions of an option.
func QuestionModal(option *entities.TicketOption, questions []string) *discordgo.InteractionResponse {
	rows := make([]discordgo.MessageComponent, 0, len(questions))
	for idx, q := range questions {
		rows = append(rows, discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:  questionPrefix + strconv.Itoa(idx),
					Label:     q,
					Style:     discordgo.TextInputParagraph,
					Required:  true,
					MaxLength: maxInputLength,
				},
			},
		})
	}

	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   ticketing.ModalID(option.ID),
			Title:      truncate(option.EmbedTitle, 45),
			Components: rows,
		},
	}
}

// ModalAnswers returns the answers of a question modal by question index.
func ModalAnswers(data discordgo.ModalSubmitInteractionData) []string {
	var answers []string
	for _, c := range data.Components {
		row, ok := c.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, rc := range row.Components {
			in, ok := rc.(*discordgo.TextInput)
			if !ok || !strings.HasPrefix(in.CustomID, questionPrefix) {
				continue
			}
			idx, err := strconv.Atoi(strings.TrimPrefix(in.CustomID, questionPrefix))
			if err != nil || idx < 0 || idx >= ticketing.MaxModalQuestions {
				continue
			}
			for len(answers) <= idx {
				answers = append(answers, "")
			}
			answers[idx] = in.Value
		}
	}
	return answers
}
