package logging

const (
	// KeyError is the key for an error attribute.
	KeyError = "err"

	// KeyDal is the key for the data access layer attribute.
	KeyDal = "dal"

	// KeyGuild is the key for a guild ID attribute.
	KeyGuild = "guild_id"

	// KeyUser is the key for a user ID attribute.
	KeyUser = "user_id"

	// KeyChannel is the key for a channel ID attribute.
	KeyChannel = "channel_id"

	// KeyConversation is the key for a conversation ID attribute.
	KeyConversation = "conversation_id"

	// KeyTicket is the key for a ticket ID attribute.
	KeyTicket = "ticket_id"

	// KeyCommand is the key for a command name attribute.
	KeyCommand = "command"

	// KeyApp is the key for the application name attribute.
	KeyApp = "app"
)
