package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/listenupapp/listenup-library/internal/logger"
	"github.com/listenupapp/listenup-library/internal/service"
	"github.com/listenupapp/listenup-library/internal/store/sqlite"
	"github.com/listenupapp/listenup-library/internal/validation"
)

type globalOptions struct {
	dbPath       string
	json         bool
	logLevel     string
	ignorePrefix bool
}

type commandContext struct {
	opts *globalOptions

	openOnce sync.Once
	store    *sqlite.Store
	log      *logger.Logger
	openErr  error
}

func newCommandContext(opts *globalOptions) *commandContext {
	return &commandContext{opts: opts}
}

func defaultDBPath() string {
	if p := os.Getenv("DB_PATH"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "library.db"
	}
	return filepath.Join(home, "ListenUp", "library.db")
}

func (c *commandContext) logger() *logger.Logger {
	if c.log == nil {
		c.log = logger.New(logger.Config{
			Writer: os.Stderr,
			Level:  logger.ParseLevel(c.opts.logLevel),
		})
	}
	return c.log
}

// ensureStore opens the database once per invocation.
func (c *commandContext) ensureStore() (*sqlite.Store, error) {
	c.openOnce.Do(func() {
		if err := os.MkdirAll(filepath.Dir(c.opts.dbPath), 0o755); err != nil {
			c.openErr = fmt.Errorf("create database directory: %w", err)
			return
		}
		c.store, c.openErr = sqlite.Open(c.opts.dbPath, c.logger().Logger)
	})
	return c.store, c.openErr
}

func (c *commandContext) close() error {
	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.store = nil
	return err
}

func (c *commandContext) serviceOptions() service.Options {
	return service.Options{IgnorePrefix: c.opts.ignorePrefix, ShelfLimit: service.DefaultShelfLimit}
}

func (c *commandContext) libraryItems() (*service.LibraryItemService, error) {
	st, err := c.ensureStore()
	if err != nil {
		return nil, err
	}
	return service.NewLibraryItemService(st, validation.New(), c.serviceOptions(), c.logger().Logger), nil
}

func (c *commandContext) shelves() (*service.ShelfService, error) {
	st, err := c.ensureStore()
	if err != nil {
		return nil, err
	}
	return service.NewShelfService(st, validation.New(), c.serviceOptions(), c.logger().Logger), nil
}
