// Package messages holds the user facing text the bot replies with.
package messages

const (
	// ErrUserErrorProcessing is the generic reply when something unexpected went wrong.
	ErrUserErrorProcessing = "There was an error processing your request. Please try again later."

	// ErrNotAdministrator is the reply when a non administrator runs an administrator command.
	ErrNotAdministrator = "You must be an administrator to use this command."

	// ErrRateLimited is the reply when a user sends commands too quickly.
	ErrRateLimited = "You are doing that too often. Please wait a moment and try again."

	// ErrGuildOnly is the reply when a command is used outside of a server.
	ErrGuildOnly = "This command can only be used in a server."

	// ErrStorageUnavailable is the reply when the database could not be reached.
	ErrStorageUnavailable = "The ticket database is unavailable right now. Please try again in a moment."
)

// Replies for the panel commands and the setup wizard.
const (
	PanelNotFound = "Panel not found!"

	PanelNoOptions = "This panel has no ticket options configured. Please add options first!"

	PanelSent = "Panel sent successfully!"

	PanelsCleared = "All panels have been cleared!"

	PanelCleared = "Panel `%s` has been cleared!"

	PanelNameRequired = "Please provide a panel name to clear."

	PanelCreated = "Panel '%s' created successfully with %d options!\nUse `/send_panel` to display it in any channel."

	PanelCommitFailed = "Failed to create panel. Please try again."

	PanelDuplicate = "A panel named '%s' already exists in this server. Please run the setup again with another name."

	PanelUpdated = "Panel '%s' has been updated."

	SetupStarted = "Ticket panel setup started. Answer the prompts in this channel, or type `cancel` to stop."

	EditStarted = "Editing panel '%s'. Answer the prompts in this channel, or type `cancel` to stop."

	SetupTimedOut = "Setup timed out. Please use the setup command again to restart the process."

	SetupCancelled = "Setup cancelled. Nothing was saved."

	SetupSuperseded = "This setup was replaced by a newer setup in this server. Nothing was saved."

	SetupNoCategories = "This server has no categories. Create a category for tickets and run the setup again."

	SetupStepFailed = "Setup stopped: %s"

	PromptInactive = "This prompt is no longer active."

	ClearTypeUnknown = "Unknown clear type. Choose a single panel or all panels."

	TicketCreated = "Ticket created: <#%s>"

	TicketNotActive = "This command can only be used in active ticket channels!"

	TicketNotActiveShort = "This is not an active ticket channel!"

	TicketClosing = "Closing ticket..."

	CloseRequestSent = "Close request sent."

	CloseRequestHoursInvalid = "The number of hours must be between 0 and 8760."

	TicketOnlyCreator = "Only the ticket creator can close this ticket!"

	TicketRequestLapsed = "This close request has expired. Please request closure again."

	TicketRequestExpiredNotice = "The close request has expired. The ticket remains open."

	TicketStorageFailed = "The ticket could not be saved. Please try again."
)
