package telegram

import (
	"encoding/json"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/lordralex/rallypoint/api"
	"strconv"
)

// webAppEnvelope picks the mini app result out of a raw update, since
// tgbotapi.Message does not decode web_app_data.
type webAppEnvelope struct {
	Message *struct {
		WebAppData *struct {
			Data       string `json:"data"`
			ButtonText string `json:"button_text"`
		} `json:"web_app_data"`
	} `json:"message"`
}

// parseUpdate translates a webhook body into an api.Update. Updates the bot
// has no use for come back with api.KindUnknown.
func parseUpdate(body []byte) (api.Update, error) {
	var raw tgbotapi.Update
	if err := json.Unmarshal(body, &raw); err != nil {
		return api.Update{}, err
	}
	var envelope webAppEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return api.Update{}, err
	}

	update := api.Update{ID: strconv.Itoa(raw.UpdateID)}

	switch {
	case raw.Message != nil:
		msg := raw.Message
		update.Channel = chatId(msg.Chat)
		update.From = user(msg.From)
		if msg.IsCommand() {
			update.Command = msg.Command()
		}
		if envelope.Message != nil && envelope.Message.WebAppData != nil {
			update.Submission = &api.Submission{Payload: envelope.Message.WebAppData.Data}
		}
	case raw.InlineQuery != nil:
		update.From = user(raw.InlineQuery.From)
		update.Query = &api.Query{ID: raw.InlineQuery.ID, Text: raw.InlineQuery.Query}
	case raw.CallbackQuery != nil:
		cq := raw.CallbackQuery
		update.From = user(cq.From)
		update.Action = &api.Action{ID: cq.ID, Data: cq.Data}
		if cq.Message != nil {
			update.Channel = chatId(cq.Message.Chat)
			update.Action.Message = api.MessageRef(strconv.Itoa(cq.Message.MessageID))
		}
	}

	return update, nil
}

func chatId(chat *tgbotapi.Chat) string {
	if chat == nil {
		return ""
	}
	return strconv.FormatInt(chat.ID, 10)
}

func user(u *tgbotapi.User) api.User {
	if u == nil {
		return api.User{Name: "User"}
	}
	name := u.FirstName
	if name == "" {
		name = "User"
	}
	return api.User{ID: strconv.FormatInt(u.ID, 10), Name: name}
}
