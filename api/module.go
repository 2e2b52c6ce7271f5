package api

import "context"

// Module is a platform connection. Run blocks, feeding every update it
// receives into the handler, until ctx is cancelled or it fails.
type Module interface {
	Name() string
	Run(ctx context.Context, handler Handler) error
}
