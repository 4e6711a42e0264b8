package setup

import (
	"context"
	"errors"
	"fmt"

	"github.com/Jacobbrewer1/warden/pkg/conversation"
	"github.com/Jacobbrewer1/warden/pkg/custom"
	"github.com/Jacobbrewer1/warden/pkg/dataaccess"
	"github.com/Jacobbrewer1/warden/pkg/entities"
	"github.com/Jacobbrewer1/warden/pkg/messages"
)

// FlowEdit is the name of the panel edit flow.
const FlowEdit = "edit_panel"

const (
	// PhaseChooseField picks what to edit.
	PhaseChooseField = "ChoosingField"

	// PhaseEditValue collects the new value.
	PhaseEditValue = "CollectingValue"
)

const (
	StepEditField = "edit_field"

	StepEditValue = "edit_value"

	StepEditCategory = "edit_category"
)

// Editable panel fields.
const (
	FieldTitle = "title"

	FieldDescription = "description"

	FieldLogChannel = "log_channel"

	FieldCategory = "category"
)

// EditDraft is a stored panel with one field being changed.
type EditDraft struct {
	Panel entities.Panel

	field      string
	categories map[string]string
}

// NewEditDraft starts an edit of panel.
func NewEditDraft(panel *entities.Panel) *EditDraft {
	return &EditDraft{Panel: *panel}
}

type editFlow struct {
	store Store
	dir   Directory
}

// NewEditFlow builds the step graph of the edit_panel wizard. Conversations
// must be started with an EditDraft of the stored panel.
func NewEditFlow(store Store, dir Directory) conversation.Flow[EditDraft] {
	f := &editFlow{store: store, dir: dir}

	return conversation.Flow[EditDraft]{
		Name:  FlowEdit,
		Start: StepEditField,
		Steps: []conversation.Step[EditDraft]{
			{
				ID:    StepEditField,
				Phase: PhaseChooseField,
				Prompt: conversation.Static[EditDraft](conversation.Prompt{
					Text:  "What would you like to edit?",
					Style: conversation.StyleButtons,
					Choices: []conversation.Choice{
						{Label: "Edit Title", Value: FieldTitle},
						{Label: "Edit Description", Value: FieldDescription},
						{Label: "Edit Log Channel", Value: FieldLogChannel},
						{Label: "Edit Category", Value: FieldCategory},
					},
				}),
				Handle: func(_ context.Context, d *EditDraft, in conversation.Input) (string, error) {
					switch in.Value {
					case FieldTitle, FieldDescription, FieldLogChannel:
						d.field = in.Value
						return StepEditValue, nil
					case FieldCategory:
						d.field = in.Value
						return StepEditCategory, nil
					}
					return "", conversation.Invalid("Please choose one of the buttons.")
				},
			},
			{
				ID:     StepEditValue,
				Phase:  PhaseEditValue,
				Prompt: f.valuePrompt,
				Handle: f.value,
			},
			{
				ID:     StepEditCategory,
				Phase:  PhaseEditValue,
				Prompt: f.categoryPrompt,
				Handle: func(_ context.Context, d *EditDraft, in conversation.Input) (string, error) {
					if _, ok := d.categories[in.Value]; !ok {
						return "", conversation.Invalid("Please select one of the listed categories.")
					}
					d.Panel.CategoryID = custom.Snowflake(in.Value)
					return conversation.Done, nil
				},
			},
		},
		NewDraft: func(conversation.Actor) *EditDraft {
			return new(EditDraft)
		},
		Commit: f.commit,
		Messages: conversation.Messages{
			TimedOut:     messages.SetupTimedOut,
			Cancelled:    messages.SetupCancelled,
			Superseded:   messages.SetupSuperseded,
			CommitFailed: messages.ErrUserErrorProcessing,
			Failed:       messages.ErrUserErrorProcessing,
		},
	}
}

func (f *editFlow) valuePrompt(_ context.Context, d *EditDraft) (conversation.Prompt, error) {
	switch d.field {
	case FieldTitle:
		return embedPrompt("Edit Panel", fmt.Sprintf("Enter the new title for the panel embed (currently: %s):", d.Panel.EmbedTitle)), nil
	case FieldDescription:
		return embedPrompt("Edit Panel", "Enter the new description for the panel embed:"), nil
	default:
		return conversation.Prompt{
			Text:    "Please mention the channel where ticket logs should be sent (e.g., #log-channel).",
			Timeout: LogChannelTimeout,
		}, nil
	}
}

func (f *editFlow) value(ctx context.Context, d *EditDraft, in conversation.Input) (string, error) {
	switch d.field {
	case FieldTitle:
		v, err := requireText("panel title", in.Text, MaxTitleLength)
		if err != nil {
			return "", err
		}
		d.Panel.EmbedTitle = v
	case FieldDescription:
		v, err := requireText("panel description", in.Text, MaxDescriptionLength)
		if err != nil {
			return "", err
		}
		d.Panel.EmbedDescription = v
	default:
		id, err := resolveLogChannel(ctx, f.dir, d.Panel.GuildID.String(), in.Text)
		if err != nil {
			return "", err
		}
		d.Panel.LogChannelID = custom.Snowflake(id)
	}
	return conversation.Done, nil
}

func (f *editFlow) categoryPrompt(ctx context.Context, d *EditDraft) (conversation.Prompt, error) {
	p, categories, err := categoryChoices(ctx, f.dir, d.Panel.GuildID.String())
	if err != nil {
		return conversation.Prompt{}, err
	}
	d.categories = categories
	p.Text = "Select the default category for this panel:"
	return p, nil
}

func (f *editFlow) commit(ctx context.Context, _ conversation.Actor, d *EditDraft) (string, error) {
	err := f.store.UpdatePanel(ctx, &d.Panel)
	if errors.Is(err, dataaccess.ErrNotFound) {
		return "", conversation.Abort(messages.PanelNotFound)
	} else if err != nil {
		return "", fmt.Errorf("error updating panel: %w", err)
	}
	return fmt.Sprintf(messages.PanelUpdated, d.Panel.Name), nil
}
