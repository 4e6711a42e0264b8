package ticketing

import (
	"strings"
	"unicode/utf8"

	"github.com/Jacobbrewer1/warden/pkg/entities"
)

// maxChannelName is the Discord channel name limit.
const maxChannelName = 100

const viewAndSend = PermissionViewChannel | PermissionSendMessages

// ticketOverwrites hides the channel from @everyone and opens it to the
// creator, the bot and every role of the option.
func ticketOverwrites(guildID, creatorID, botID string, option *entities.TicketOption) []Overwrite {
	overwrites := []Overwrite{
		{ID: guildID, Kind: OverwriteRole, Deny: PermissionViewChannel},
		{ID: creatorID, Kind: OverwriteMember, Allow: viewAndSend},
		{ID: botID, Kind: OverwriteMember, Allow: viewAndSend},
	}
	for _, role := range option.RoleIDs {
		overwrites = append(overwrites, Overwrite{ID: role, Kind: OverwriteRole, Allow: viewAndSend})
	}
	return overwrites
}

// channelName is <option>-<username>, lowercased, with spaces as dashes.
func channelName(option, username string) string {
	name := strings.ToLower(option + "-" + username)
	name = strings.Join(strings.Fields(name), "-")
	if utf8.RuneCountInString(name) > maxChannelName {
		name = string([]rune(name)[:maxChannelName])
	}
	return name
}
