//go:build !notelegram

package modules

import (
	"github.com/lordralex/rallypoint/modules/telegram"
)

func init() {
	Add(&telegram.Module{})
}
