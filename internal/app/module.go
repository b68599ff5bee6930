// Package app composes the client from its parts with fx.
package app

import (
	"context"
	"time"

	"github.com/matheus3301/zapweb/internal/api"
	"github.com/matheus3301/zapweb/internal/bus"
	"github.com/matheus3301/zapweb/internal/chatlist"
	"github.com/matheus3301/zapweb/internal/config"
	"github.com/matheus3301/zapweb/internal/lock"
	"github.com/matheus3301/zapweb/internal/logging"
	"github.com/matheus3301/zapweb/internal/profile"
	"github.com/matheus3301/zapweb/internal/rt"
	"github.com/matheus3301/zapweb/internal/stories"
	"github.com/matheus3301/zapweb/internal/store"
	"github.com/matheus3301/zapweb/internal/tui"
	"github.com/matheus3301/zapweb/internal/unread"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved profile configuration passed to the fx module.
type Params struct {
	ProfileName string
	Config      *config.Config
}

// Module returns the fx module for the client, composing all providers
// and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("zapweb",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideLock,
			provideStore,
			provideAPIClient,
			provideSocket,
			provideRoster,
			provideTracker,
			provideStories,
			provideTUI,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	// The TUI owns the terminal, so no stderr core.
	return logging.NewFileOnly(profile.LogPath(p.ProfileName), p.ProfileName)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := profile.EnsureDir(p.ProfileName); err != nil {
		return nil, err
	}
	l, err := lock.Acquire(profile.Dir(p.ProfileName))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired", zap.String("profile", p.ProfileName))
	return l, nil
}

func provideStore(p Params, logger *zap.Logger) (*store.DB, error) {
	dbPath := profile.DBPath(p.ProfileName)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideAPIClient(p Params, logger *zap.Logger) (*api.Client, error) {
	return api.New(p.Config.ServerURL, logger)
}

func provideSocket(c *api.Client, b *bus.Bus, logger *zap.Logger) *rt.Socket {
	return rt.NewSocket(c.WebSocketURL(), b, logger)
}

func provideRoster(b *bus.Bus, db *store.DB, logger *zap.Logger) *chatlist.Roster {
	return chatlist.NewRoster(b, db, logger)
}

func provideTracker(c *api.Client, db *store.DB, b *bus.Bus, logger *zap.Logger) *unread.Tracker {
	return unread.NewTracker(c, db, b, logger)
}

func provideStories(db *store.DB, b *bus.Bus, logger *zap.Logger) *stories.Viewer {
	return stories.NewViewer(db, b, logger, stories.DefaultDwell)
}

func provideTUI(p Params, b *bus.Bus, c *api.Client, roster *chatlist.Roster, tracker *unread.Tracker, viewer *stories.Viewer, db *store.DB, logger *zap.Logger) *tui.App {
	return tui.NewApp(tui.Deps{
		Bus:          b,
		API:          c,
		Roster:       roster,
		Tracker:      tracker,
		Stories:      viewer,
		Store:        db,
		Logger:       logger,
		ProfileName:  p.ProfileName,
		PollInterval: time.Duration(p.Config.PollIntervalSec) * time.Second,
	})
}

func registerLifecycle(lc fx.Lifecycle, sock *rt.Socket, roster *chatlist.Roster, tracker *unread.Tracker, db *store.DB, lk *lock.Lock, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			roster.Start(context.Background())
			tracker.Start(context.Background())
			sock.Start()
			logger.Info("client started")
			return nil
		},
		OnStop: func(_ context.Context) error {
			sock.Stop()
			tracker.Stop()
			roster.Stop()
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("client stopped")
			return nil
		},
	})
}
