package modules

import (
	"context"
	"errors"
	"github.com/lordralex/rallypoint/api"
	"github.com/lordralex/rallypoint/api/logger"
	"golang.org/x/sync/errgroup"
	"sort"
	"sync"
)

var locker sync.Mutex
var availableModules = make(map[string]api.Module, 0)

var ErrNoModules = errors.New("no modules to run")

func Add(module api.Module) {
	locker.Lock()
	defer locker.Unlock()
	availableModules[module.Name()] = module
}

// Available lists the registered module names in order.
func Available() []string {
	locker.Lock()
	defer locker.Unlock()

	names := make([]string, 0, len(availableModules))
	for k := range availableModules {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Select picks the named modules, or every module for "all". Unknown names
// are logged and skipped.
func Select(names []string) []api.Module {
	locker.Lock()
	defer locker.Unlock()

	selected := make([]api.Module, 0)
	if len(names) == 1 && names[0] == "all" {
		for _, v := range availableModules {
			selected = append(selected, v)
		}
		return selected
	}

	seen := make(map[string]bool)
	for _, v := range names {
		if seen[v] {
			continue
		}
		seen[v] = true

		logger.Out().Printf("Loading %s\n", v)
		mod := availableModules[v]
		if mod != nil {
			selected = append(selected, mod)
		} else {
			logger.Err().Printf("Module %s does not exist\n", v)
		}
	}
	return selected
}

// Run starts the named modules against one handler and blocks until ctx is
// done or one of them fails, which stops the rest.
func Run(ctx context.Context, names []string, handler api.Handler) error {
	selected := Select(names)
	if len(selected) == 0 {
		return ErrNoModules
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, v := range selected {
		mod := v
		g.Go(func() error {
			logger.Out().Printf("Loaded %s\n", mod.Name())
			err := mod.Run(gctx, handler)
			if err != nil {
				logger.Err().Printf("Module %s stopped: %s\n", mod.Name(), err.Error())
			}
			return err
		})
	}
	return g.Wait()
}
