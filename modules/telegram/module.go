package telegram

import (
	"context"
	"errors"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/lordralex/rallypoint/api"
	"github.com/lordralex/rallypoint/api/env"
	"github.com/lordralex/rallypoint/api/logger"
	"golang.org/x/sync/errgroup"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

type Module struct {
	api.Module
	locker   sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

func (*Module) Name() string {
	return "telegram"
}

// Run registers the webhook with Telegram and serves it until ctx is done.
// Every update is handled on its own goroutine.
func (m *Module) Run(ctx context.Context, handler api.Handler) error {
	token := env.Get("telegram.token")
	if token == "" {
		return errors.New("TELEGRAM_TOKEN must be set in the environment to run the telegram module")
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return err
	}
	logger.Out().Printf("Authorized on account %s\n", bot.Self.UserName)

	if base := env.Get("telegram.webhook"); base != "" {
		wh, err := tgbotapi.NewWebhook(strings.TrimSuffix(base, "/") + webhookPath)
		if err != nil {
			return err
		}
		if _, err = bot.Request(wh); err != nil {
			return err
		}
		logger.Out().Printf("Webhook set to %s%s\n", strings.TrimSuffix(base, "/"), webhookPath)
	} else {
		logger.Err().Printf("TELEGRAM_WEBHOOK is not set, relying on an existing webhook\n")
	}

	m.locker.Lock()
	m.closed = false
	m.locker.Unlock()

	platform := NewPlatform(bot)
	// in-flight updates finish even after shutdown starts
	updateCtx := context.WithoutCancel(ctx)

	server := &http.Server{
		Addr: ":" + strconv.Itoa(env.GetIntOr("port", 3000)),
		Handler: newRouter(func(update api.Update) {
			if !m.track() {
				logger.Err().Printf("Shutting down, dropping update %s\n", update.ID)
				return
			}
			go func() {
				defer m.inflight.Done()
				if err := handler.Handle(updateCtx, platform, update); err != nil {
					logger.Debug().Printf("Update %s: %s\n", update.ID, err.Error())
				}
			}()
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Out().Printf("Listening on %s\n", server.Addr)
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		m.drain()
		return err
	})

	return g.Wait()
}

// track counts an update as in flight. It is false once draining started.
func (m *Module) track() bool {
	m.locker.Lock()
	defer m.locker.Unlock()
	if m.closed {
		return false
	}
	m.inflight.Add(1)
	return true
}

// drain stops new updates from being tracked and waits for the tracked ones.
func (m *Module) drain() {
	m.locker.Lock()
	m.closed = true
	m.locker.Unlock()
	m.inflight.Wait()
}
