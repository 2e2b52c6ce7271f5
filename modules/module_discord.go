//go:build !nodiscord

package modules

import (
	"github.com/lordralex/rallypoint/modules/discord"
)

func init() {
	Add(&discord.Module{})
}
