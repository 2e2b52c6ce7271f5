package telegram

import (
	"encoding/json"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lordralex/rallypoint/api"
	"github.com/lordralex/rallypoint/api/logger"
	"io"
	"net/http"
)

const (
	webhookPath = "/webhook"
	maxBody     = 1024 * 1024 //1MB
)

// newRouter serves the webhook Telegram posts updates to and a health check.
// dispatch must not block; Telegram waits for the response.
func newRouter(dispatch func(api.Update)) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "RallyPoint Bot is running!"})
	})

	r.Post(webhookPath, func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
		if err != nil {
			logger.Err().Printf("Error reading webhook body: %s\n", err.Error())
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		update, err := parseUpdate(body)
		if err != nil {
			logger.Err().Printf("Dropping webhook update: %s (payload %q)\n", err.Error(), body)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		logger.Debug().Printf("Webhook update %s (%s)\n", update.ID, update.Kind())
		if update.Kind() != api.KindUnknown {
			dispatch(update)
		}
		w.WriteHeader(http.StatusOK)
	})

	return r
}
