package discord

import (
	"context"
	"errors"
	"github.com/bwmarrin/discordgo"
	"github.com/lordralex/rallypoint/api"
	"github.com/lordralex/rallypoint/api/env"
	"github.com/lordralex/rallypoint/api/logger"
	"strings"
	"sync"
)

type Module struct {
	api.Module
	locker   sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

func (*Module) Name() string {
	return "discord"
}

// Run connects to the gateway, registers /plan and handles interactions until
// ctx is done.
func (m *Module) Run(ctx context.Context, handler api.Handler) error {
	token := env.Get("discord.token")
	if token == "" {
		return errors.New("DISCORD_TOKEN must be set in the environment to run the discord module")
	}

	ds, err := newSession(token)
	if err != nil {
		return err
	}

	guilds := env.GetStringArray("discord.guilds", ";")
	if len(guilds) == 0 {
		guilds = []string{""}
	}

	ds.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		logger.Out().Printf("Connected to Discord as %s\n", r.User.Username)
		for _, k := range guilds {
			logger.Out().Printf("Registering %s for guild %q\n", planOperation.Name, k)
			_, err := s.ApplicationCommandCreate(r.User.ID, k, planOperation)
			if err != nil {
				logger.Err().Printf("Cannot create slash command %q: %v\n", planOperation.Name, err)
			}
		}
	})

	platform := NewPlatform(ds)
	// in-flight interactions finish even after shutdown starts
	updateCtx := context.WithoutCancel(ctx)

	m.locker.Lock()
	m.closed = false
	m.locker.Unlock()

	ds.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if !m.track() {
			return
		}
		defer m.inflight.Done()
		dispatch(updateCtx, platform, handler, i.Interaction)
	})

	if err = ds.Open(); err != nil {
		return err
	}

	<-ctx.Done()
	err = ds.Close()
	m.drain()
	return err
}

// track counts an interaction as in flight. It is false once draining started.
func (m *Module) track() bool {
	m.locker.Lock()
	defer m.locker.Unlock()
	if m.closed {
		return false
	}
	m.inflight.Add(1)
	return true
}

// drain stops new interactions from being tracked and waits for the tracked
// ones.
func (m *Module) drain() {
	m.locker.Lock()
	m.closed = true
	m.locker.Unlock()
	m.inflight.Wait()
}

// newSession prepares a gateway session. Interactions arrive without any
// privileged intent, guilds is all the bot asks for.
func newSession(token string) (*discordgo.Session, error) {
	if !strings.HasPrefix(token, "Bot ") {
		token = "Bot " + token
	}

	ds, err := discordgo.New(token)
	if err != nil {
		return nil, err
	}
	ds.Identify.Intents = discordgo.IntentsGuilds
	return ds, nil
}

func dispatch(ctx context.Context, platform *Platform, handler api.Handler, i *discordgo.Interaction) {
	update := parseInteraction(i)
	kind := update.Kind()
	logger.Debug().Printf("Interaction %s (%s)\n", i.ID, kind)
	if kind == api.KindUnknown {
		return
	}

	if kind == api.KindCommand {
		// the command output goes to the channel, the reply is only a placeholder
		err := platform.session.InteractionRespond(i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
		})
		if err != nil {
			logger.Err().Printf("Error deferring %s: %s\n", i.ID, err.Error())
		}
		defer func() {
			_ = platform.session.InteractionResponseDelete(i)
		}()
	} else {
		platform.hold(i)
		defer func() {
			if err := platform.release(i); err != nil {
				logger.Err().Printf("Error answering %s: %s\n", i.ID, err.Error())
			}
		}()
	}

	if err := handler.Handle(ctx, platform, update); err != nil {
		logger.Debug().Printf("Interaction %s: %s\n", i.ID, err.Error())
	}
}
