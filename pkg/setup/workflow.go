package setup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Jacobbrewer1/warden/pkg/conversation"
	"github.com/Jacobbrewer1/warden/pkg/custom"
	"github.com/Jacobbrewer1/warden/pkg/dataaccess"
	"github.com/Jacobbrewer1/warden/pkg/entities"
	"github.com/Jacobbrewer1/warden/pkg/messages"
)

// FlowSetup is the name of the panel setup flow.
const FlowSetup = "setup_ticket_panel"

// Phases of the setup flow.
const (
	PhasePanelMeta = "CollectingPanelMeta"

	PhaseLogChannel = "CollectingLogChannel"

	PhaseOption = "CollectingOption"

	PhaseMoreQuestions = "AwaitingAddMoreOption"

	PhaseCategoryRoles = "CollectingCategory&Roles"

	PhaseMoreOptions = "AwaitingAddAnotherOption"
)

// Step ids of the setup flow.
const (
	StepPanelName = "panel_name"

	StepPanelTitle = "panel_title"

	StepPanelDescription = "panel_description"

	StepLogChannel = "log_channel"

	StepOptionName = "option_name"

	StepOptionTitle = "option_title"

	StepOptionDescription = "option_description"

	StepQuestion = "question"

	StepMoreQuestions = "more_questions"

	StepCategory = "category"

	StepRoles = "roles"

	StepMoreOptions = "more_options"
)

// LogChannelTimeout is how long the log channel prompt waits.
const LogChannelTimeout = 60 * time.Second

const (
	choiceYes = "yes"
	choiceNo  = "no"
)

type setupFlow struct {
	store Store
	dir   Directory
}

// NewSetupFlow builds the step graph of the setup_ticket_panel wizard.
func NewSetupFlow(store Store, dir Directory) conversation.Flow[Draft] {
	f := &setupFlow{store: store, dir: dir}

	return conversation.Flow[Draft]{
		Name:  FlowSetup,
		Start: StepPanelName,
		Steps: []conversation.Step[Draft]{
			{
				ID:     StepPanelName,
				Phase:  PhasePanelMeta,
				Prompt: conversation.Static[Draft](embedPrompt("Ticket Panel Setup", "Please enter the panel name:")),
				Handle: f.panelName,
			},
			{
				ID:     StepPanelTitle,
				Phase:  PhasePanelMeta,
				Prompt: conversation.Static[Draft](embedPrompt("Ticket Panel Setup", "Enter the title for the ticket panel embed:")),
				Handle: func(_ context.Context, d *Draft, in conversation.Input) (string, error) {
					v, err := requireText("panel title", in.Text, MaxTitleLength)
					if err != nil {
						return "", err
					}
					d.Panel.EmbedTitle = v
					return StepPanelDescription, nil
				},
			},
			{
				ID:     StepPanelDescription,
				Phase:  PhasePanelMeta,
				Prompt: conversation.Static[Draft](embedPrompt("Ticket Panel Setup", "Enter the description for the ticket panel embed:")),
				Handle: func(_ context.Context, d *Draft, in conversation.Input) (string, error) {
					v, err := requireText("panel description", in.Text, MaxDescriptionLength)
					if err != nil {
						return "", err
					}
					d.Panel.EmbedDescription = v
					return StepLogChannel, nil
				},
			},
			{
				ID:    StepLogChannel,
				Phase: PhaseLogChannel,
				Prompt: conversation.Static[Draft](conversation.Prompt{
					Text:    "Please mention the channel where ticket logs should be sent (e.g., #log-channel).",
					Timeout: LogChannelTimeout,
				}),
				Handle: func(ctx context.Context, d *Draft, in conversation.Input) (string, error) {
					id, err := resolveLogChannel(ctx, f.dir, d.Panel.GuildID.String(), in.Text)
					if err != nil {
						return "", err
					}
					d.Panel.LogChannelID = custom.Snowflake(id)
					return StepOptionName, nil
				},
			},
			{
				ID:     StepOptionName,
				Phase:  PhaseOption,
				Prompt: conversation.Static[Draft](embedPrompt("Ticket Option Setup", "Enter the name for this ticket option:")),
				Handle: func(_ context.Context, d *Draft, in conversation.Input) (string, error) {
					v, err := requireText("option name", in.Text, MaxNameLength)
					if err != nil {
						return "", err
					}
					for _, o := range d.Options {
						if o.Name == v {
							return "", conversation.Invalid("This panel already has an option named '%s'. Please choose another name.", v)
						}
					}
					d.option = &entities.TicketOption{Name: v}
					return StepOptionTitle, nil
				},
			},
			{
				ID:     StepOptionTitle,
				Phase:  PhaseOption,
				Prompt: conversation.Static[Draft](embedPrompt("Ticket Embed Setup", "Enter the title for the ticket embed:")),
				Handle: func(_ context.Context, d *Draft, in conversation.Input) (string, error) {
					v, err := requireText("ticket title", in.Text, MaxTitleLength)
					if err != nil {
						return "", err
					}
					d.option.EmbedTitle = v
					return StepOptionDescription, nil
				},
			},
			{
				ID:     StepOptionDescription,
				Phase:  PhaseOption,
				Prompt: conversation.Static[Draft](embedPrompt("Ticket Embed Setup", "Enter the description for the ticket embed:")),
				Handle: func(_ context.Context, d *Draft, in conversation.Input) (string, error) {
					v, err := requireText("ticket description", in.Text, MaxDescriptionLength)
					if err != nil {
						return "", err
					}
					d.option.EmbedDescription = v
					return StepQuestion, nil
				},
			},
			{
				ID:     StepQuestion,
				Phase:  PhaseOption,
				Prompt: f.questionPrompt,
				Handle: func(_ context.Context, d *Draft, in conversation.Input) (string, error) {
					if len(d.option.Questions) == 0 && isNone(in.Text) {
						return StepCategory, nil
					}
					q, err := validateQuestion(in.Text)
					if err != nil {
						return "", err
					}
					d.option.Questions = append(d.option.Questions, q)
					return StepMoreQuestions, nil
				},
			},
			{
				ID:    StepMoreQuestions,
				Phase: PhaseMoreQuestions,
				Prompt: conversation.Static[Draft](conversation.Prompt{
					Text:  "Would you like to add another question?",
					Style: conversation.StyleButtons,
					Choices: []conversation.Choice{
						{Label: "Add Another Question", Value: choiceYes, Emphasis: true},
						{Label: "Continue Setup", Value: choiceNo},
					},
				}),
				Handle: func(_ context.Context, _ *Draft, in conversation.Input) (string, error) {
					if in.Value == choiceYes {
						return StepQuestion, nil
					}
					return StepCategory, nil
				},
			},
			{
				ID:        StepCategory,
				Phase:     PhaseCategoryRoles,
				Prompt:    f.categoryPrompt,
				Handle:    f.category,
				OnInvalid: conversation.RetryOnInvalid,
			},
			{
				ID:     StepRoles,
				Phase:  PhaseCategoryRoles,
				Prompt: conversation.Static[Draft](embedPrompt("Role Selection", "Mention all roles that should have access to this ticket type (separate with spaces), or reply `none`:")),
				Handle: f.roles,
			},
			{
				ID:     StepMoreOptions,
				Phase:  PhaseMoreOptions,
				Prompt: f.moreOptionsPrompt,
				Handle: func(_ context.Context, d *Draft, in conversation.Input) (string, error) {
					if in.Value == choiceYes && len(d.Options) < MaxOptions {
						return StepOptionName, nil
					}
					return conversation.Done, nil
				},
			},
		},
		NewDraft: func(actor conversation.Actor) *Draft {
			return newDraft(actor.GuildID)
		},
		Commit: f.commit,
		Messages: conversation.Messages{
			TimedOut:     messages.SetupTimedOut,
			Cancelled:    messages.SetupCancelled,
			Superseded:   messages.SetupSuperseded,
			CommitFailed: messages.PanelCommitFailed,
			Failed:       messages.ErrUserErrorProcessing,
		},
	}
}

func embedPrompt(title, text string) conversation.Prompt {
	return conversation.Prompt{Title: title, Text: text}
}

func (f *setupFlow) panelName(ctx context.Context, d *Draft, in conversation.Input) (string, error) {
	name, err := requireText("panel name", in.Text, MaxNameLength)
	if err != nil {
		return "", err
	}

	_, err = f.store.FindPanelByName(ctx, d.Panel.GuildID.String(), name)
	switch {
	case err == nil:
		return "", conversation.Invalid("A panel named '%s' already exists in this server. Please enter another name.", name)
	case !errors.Is(err, dataaccess.ErrNotFound):
		return "", fmt.Errorf("error checking panel name: %w", err)
	}

	d.Panel.Name = name
	return StepPanelTitle, nil
}

func (f *setupFlow) questionPrompt(_ context.Context, d *Draft) (conversation.Prompt, error) {
	text := "Enter a question that users will answer when creating a ticket:"
	if len(d.option.Questions) == 0 {
		text += "\nReply `none` if this option needs no questions."
	}
	return embedPrompt("Ticket Question Setup", text), nil
}

func (f *setupFlow) categoryPrompt(ctx context.Context, d *Draft) (conversation.Prompt, error) {
	p, categories, err := categoryChoices(ctx, f.dir, d.Panel.GuildID.String())
	if err != nil {
		return conversation.Prompt{}, err
	}
	d.categories = categories
	p.Text = "Select the category for this ticket option:"
	return p, nil
}

// categoryChoices lists the first MaxChoices categories of the guild as a
// select prompt. A guild without categories aborts the conversation.
func categoryChoices(ctx context.Context, dir Directory, guildID string) (conversation.Prompt, map[string]string, error) {
	categories, err := dir.Categories(ctx, guildID)
	if err != nil {
		return conversation.Prompt{}, nil, fmt.Errorf("error listing categories: %w", err)
	}
	if len(categories) == 0 {
		return conversation.Prompt{}, nil, conversation.Abort(messages.SetupNoCategories)
	}
	if len(categories) > MaxChoices {
		categories = categories[:MaxChoices]
	}

	offered := make(map[string]string, len(categories))
	choices := make([]conversation.Choice, 0, len(categories))
	for _, c := range categories {
		offered[c.ID] = c.Name
		choices = append(choices, conversation.Choice{Label: c.Name, Value: c.ID})
	}

	return conversation.Prompt{
		Style:   conversation.StyleSelect,
		Choices: choices,
	}, offered, nil
}

func (f *setupFlow) category(_ context.Context, d *Draft, in conversation.Input) (string, error) {
	if _, ok := d.categories[in.Value]; !ok {
		return "", conversation.Invalid("Please select one of the listed categories.")
	}
	d.option.CategoryID = custom.Snowflake(in.Value)
	return StepRoles, nil
}

func (f *setupFlow) roles(_ context.Context, d *Draft, in conversation.Input) (string, error) {
	roles := mentionedRoles(in)
	if len(roles) == 0 && !isNone(in.Text) {
		return "", conversation.Invalid("No roles mentioned. Mention the roles that can see these tickets, or reply `none`.")
	}
	d.option.RoleIDs = roles

	if err := d.option.Validate(); err != nil {
		return "", fmt.Errorf("error validating option: %w", err)
	}
	d.Options = append(d.Options, d.option)
	d.option = nil
	return StepMoreOptions, nil
}

func (f *setupFlow) moreOptionsPrompt(_ context.Context, d *Draft) (conversation.Prompt, error) {
	p := conversation.Prompt{
		Text:  "Would you like to add another ticket option?",
		Style: conversation.StyleButtons,
		Choices: []conversation.Choice{
			{Label: "Add Another Option", Value: choiceYes, Emphasis: true},
			{Label: "Finish Setup", Value: choiceNo},
		},
	}
	if len(d.Options) >= MaxOptions {
		p.Text = fmt.Sprintf("This panel has reached the limit of %d options.", MaxOptions)
		p.Choices = p.Choices[1:]
	}
	return p, nil
}

func (f *setupFlow) commit(ctx context.Context, _ conversation.Actor, d *Draft) (string, error) {
	err := f.store.CreatePanel(ctx, &d.Panel, d.Options)
	if errors.Is(err, dataaccess.ErrDuplicatePanel) {
		return "", conversation.Abort(messages.PanelDuplicate, d.Panel.Name)
	} else if err != nil {
		return "", fmt.Errorf("error creating panel: %w", err)
	}
	return fmt.Sprintf(messages.PanelCreated, d.Panel.Name, len(d.Options)), nil
}

func resolveLogChannel(ctx context.Context, dir Directory, guildID, text string) (string, error) {
	id, ok := ParseChannelMention(text)
	if !ok {
		return "", conversation.Invalid("No channel mentioned. Please try again by mentioning a valid text channel (e.g., #log-channel).")
	}

	isText, err := dir.IsTextChannel(ctx, guildID, id)
	if err != nil {
		return "", fmt.Errorf("error resolving channel: %w", err)
	}
	if !isText {
		return "", conversation.Invalid("The mentioned channel is not a valid text channel. Please try again.")
	}
	return id, nil
}
