package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"portfolio-sync/internal/config"
	"portfolio-sync/internal/database/migration"
	dbpostgres "portfolio-sync/internal/database/postgres"
	"portfolio-sync/internal/metrics"
	"portfolio-sync/internal/pkg/jwt"
	"portfolio-sync/internal/pubsub"
	"portfolio-sync/internal/repository"
	"portfolio-sync/internal/storage"
	"portfolio-sync/internal/usecase"
	"portfolio-sync/internal/ws"
)

// Backend is an opened content store together with the connections it
// borrows. DB is set for the postgres driver only.
type Backend struct {
	Store storage.Store
	DB    *dbpostgres.Pool
	Redis *redis.Client
}

func (b *Backend) Close() error {
	if b == nil {
		return nil
	}
	var errs []error
	if b.Store != nil {
		errs = append(errs, b.Store.Close())
	}
	if b.Redis != nil {
		errs = append(errs, b.Redis.Close())
	}
	if b.DB != nil {
		errs = append(errs, b.DB.Close())
	}
	return errors.Join(errs...)
}

// OpenBackend opens the store selected by STORE_DRIVER. For postgres the
// pending migrations are applied first.
func OpenBackend(ctx context.Context, cfg config.Config, logger *log.Logger) (*Backend, error) {
	switch cfg.Store.Driver {
	case config.DriverFile, "":
		st, err := storage.NewFile(cfg.Store.Dir, logger)
		if err != nil {
			return nil, err
		}
		return &Backend{Store: st}, nil

	case config.DriverMemory:
		return &Backend{Store: storage.NewMemory().Session()}, nil

	case config.DriverSQLite:
		st, err := storage.OpenSQLite(ctx, cfg.Store.SQLitePath, cfg.Store.SQLitePoll, logger)
		if err != nil {
			return nil, err
		}
		return &Backend{Store: st}, nil

	case config.DriverRedis:
		client, err := storage.DialRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return &Backend{Store: storage.NewRedis(client, logger), Redis: client}, nil

	case config.DriverPostgres:
		pool, err := dbpostgres.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		if _, err := (migration.Runner{Dir: cfg.Store.MigrationsDir, Logger: logger}).Run(ctx, pool.SQLDB()); err != nil {
			_ = pool.Close()
			return nil, err
		}
		return &Backend{Store: storage.NewPostgres(pool, pool, logger), DB: pool}, nil

	default:
		return nil, fmt.Errorf("%w: %q", storage.ErrUnsupported, cfg.Store.Driver)
	}
}

type Container struct {
	Config  config.Config
	Logger  *log.Logger
	Metrics *metrics.Metrics
	Backend *Backend

	Slots    repository.ContentSlots
	Bus      *pubsub.Bus
	Viewers  *usecase.Viewers
	Trigger  *usecase.SyncTrigger
	Sessions *usecase.SessionRegistry
	JWT      jwt.Service
	Auth     *usecase.Auth

	Hub      *ws.Hub
	Notifier *ws.Notifier

	closeOnce sync.Once
	closeErr  error
	stop      context.CancelFunc
	done      sync.WaitGroup
}

func NewContainer(cfg config.Config, logger *log.Logger) (*Container, error) {
	if logger == nil {
		logger = log.Default()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	backend, err := OpenBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	users, err := repository.NewAdminRepository(cfg.Admin, logger)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	m := metrics.New("portfolio")
	slots := repository.NewContentSlots(backend.Store, logger, m)
	bus := pubsub.NewBus()
	viewers := usecase.NewViewers(slots, bus, logger, m)
	sessions := usecase.NewSessionRegistry(slots, bus, logger, m)
	jwtSvc := jwt.NewHMACService(jwt.Config{
		Issuer:        cfg.App.AppName,
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     cfg.JWT.AccessExpiresIn,
		RefreshTTL:    cfg.JWT.RefreshExpiresIn,
	})
	hub := ws.NewHub(logger, m)

	return &Container{
		Config:   cfg,
		Logger:   logger,
		Metrics:  m,
		Backend:  backend,
		Slots:    slots,
		Bus:      bus,
		Viewers:  viewers,
		Trigger:  usecase.NewSyncTrigger(slots, bus, logger, m),
		Sessions: sessions,
		JWT:      jwtSvc,
		Auth:     usecase.NewAuthUsecase(users, jwtSvc, sessions),
		Hub:      hub,
		Notifier: ws.NewNotifier(hub, viewers, logger),
	}, nil
}

// Start mounts the viewers and runs the background loops until ctx is done
// or Close is called.
func (c *Container) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	if err := c.Viewers.Mount(ctx); err != nil {
		cancel()
		return err
	}
	c.stop = cancel
	c.Notifier.Start()
	c.Trigger.Mount(ctx)

	c.done.Add(2)
	go func() {
		defer c.done.Done()
		c.Hub.Run(ctx)
	}()
	go func() {
		defer c.done.Done()
		c.Trigger.Run(ctx, c.Config.Sync.Interval)
	}()
	return nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	c.closeOnce.Do(func() {
		if c.stop != nil {
			c.stop()
		}
		c.done.Wait()
		c.Notifier.Stop()
		c.Viewers.Unmount()
		c.closeErr = c.Backend.Close()
	})
	return c.closeErr
}
