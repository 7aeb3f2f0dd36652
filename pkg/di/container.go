// Package di provides dependency injection container
package di

import (
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/api" //nolint:depguard
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/convert"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/storage"
)

// HistoryOpener opens the conversion history kept in a directory
type HistoryOpener func(dir string) (*storage.HistoryStore, error)

// ConverterFactory builds a converter from options
type ConverterFactory func(opts ...convert.Option) *convert.Converter

// Container holds all the dependencies for the application
type Container struct {
	serverFactory    api.ServerFactory
	historyOpener    HistoryOpener
	converterFactory ConverterFactory
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		serverFactory:    api.NewServerFactory(),
		historyOpener:    storage.NewHistoryStore,
		converterFactory: convert.New,
	}
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}

// GetHistoryOpener returns the function used to open conversion history
func (c *Container) GetHistoryOpener() HistoryOpener {
	return c.historyOpener
}

// SetHistoryOpener allows overriding how history is opened (for testing)
func (c *Container) SetHistoryOpener(opener HistoryOpener) {
	c.historyOpener = opener
}

// GetConverterFactory returns the converter factory
func (c *Container) GetConverterFactory() ConverterFactory {
	return c.converterFactory
}

// SetConverterFactory allows overriding the converter factory (for testing)
func (c *Container) SetConverterFactory(factory ConverterFactory) {
	c.converterFactory = factory
}
