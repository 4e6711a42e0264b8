package setup

import (
	"strconv"

	"github.com/Jacobbrewer1/warden/pkg/custom"
	"github.com/Jacobbrewer1/warden/pkg/entities"
)

// Draft is the panel being assembled by a setup conversation. Nothing in it
// is stored until the conversation commits.
type Draft struct {
	Panel   entities.Panel
	Options []*entities.TicketOption

	// option is the option currently being collected.
	option *entities.TicketOption

	// categories are the categories offered by the last category prompt.
	categories map[string]string
}

func newDraft(guildID string) *Draft {
	return &Draft{
		Panel: entities.Panel{
			GuildID:    custom.Snowflake(guildID),
			EmbedColor: strconv.Itoa(entities.DefaultEmbedColor),
		},
	}
}
