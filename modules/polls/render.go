package polls

import (
	"fmt"
	"github.com/lordralex/rallypoint/api"
	"strings"
)

// RenderButtons returns one vote button per option, in option order.
func RenderButtons(poll Poll) []api.Button {
	buttons := make([]api.Button, len(poll.Options))
	for k, v := range poll.Options {
		buttons[k] = api.Button{
			Label: fmt.Sprintf("%s (%d)", v.Text, len(v.Voters)),
			Kind:  api.ButtonAction,
			Data:  ActionToken{PollId: poll.ID, Option: k}.String(),
		}
	}
	return buttons
}

// RenderText returns the poll message: the header, then every option that has
// votes with the names of its voters. The text carries no markup so names
// can't break the platform's formatting.
func RenderText(poll Poll) string {
	var sb strings.Builder
	sb.WriteString("🎯 " + poll.Title + "\n\n")
	sb.WriteString("Created by " + poll.CreatedBy + "\n\n")
	sb.WriteString("Please vote for your preferred option:")

	for _, v := range poll.Options {
		if len(v.Voters) == 0 {
			continue
		}
		sb.WriteString("\n\n" + v.Text + ":")
		for _, voter := range v.Voters {
			sb.WriteString("\n• " + voter.Name)
		}
	}

	return sb.String()
}
