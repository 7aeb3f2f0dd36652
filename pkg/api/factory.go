package api

import "context"

// DefaultServerFactory hands out starters that run the real HTTP server
type DefaultServerFactory struct{}

// NewServerFactory returns the factory the CLI container uses by default
func NewServerFactory() ServerFactory {
	return &DefaultServerFactory{}
}

// CreateServerStarter returns a starter bound to StartServer
func (f *DefaultServerFactory) CreateServerStarter() ServerStarter {
	return &DefaultServerStarter{}
}

// DefaultServerStarter runs the conversion service until ctx is cancelled
type DefaultServerStarter struct{}

func (s *DefaultServerStarter) StartServer(ctx context.Context, deps Dependencies, config ServerConfig) error {
	return StartServer(ctx, deps, config)
}
