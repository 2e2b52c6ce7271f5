package api

import (
	"context"
	"strings"
	"sync"
)

type CommandFunc func(ctx context.Context, platform Platform, update Update) error

// Commands maps command names to executors. Names are case-insensitive.
type Commands struct {
	locker     sync.RWMutex
	registered map[string]CommandFunc
}

func NewCommands() *Commands {
	return &Commands{registered: make(map[string]CommandFunc)}
}

func (c *Commands) Register(cmd string, commandFunc CommandFunc) {
	c.locker.Lock()
	defer c.locker.Unlock()
	c.registered[strings.ToLower(cmd)] = commandFunc
}

// Get returns the executor for cmd, or the one registered under "" when cmd
// is unknown. It returns nil when neither exists.
func (c *Commands) Get(cmd string) CommandFunc {
	c.locker.RLock()
	defer c.locker.RUnlock()
	executor := c.registered[strings.ToLower(cmd)]
	if executor == nil {
		return c.registered[""]
	}
	return executor
}
