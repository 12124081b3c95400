package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/printnow/portal/internal/sync"
	"github.com/printnow/portal/pkg/cache"
	"github.com/printnow/portal/pkg/config"
	"github.com/printnow/portal/pkg/db"
	"github.com/printnow/portal/pkg/jwk"
	"github.com/printnow/portal/pkg/mail"
	"github.com/printnow/portal/pkg/realtime"
	"github.com/printnow/portal/pkg/storage"
	"github.com/printnow/portal/pkg/store"
)

// Backend is the Portal backend that handles organizations, boards, cards,
// customers and authentication.
type Backend struct {
	ctx     context.Context
	cfg     *config.Config
	db      *db.DB
	store   store.Store
	logger  *log.Logger
	cache   cache.Cache
	broker  realtime.Broker
	storage storage.Storage
	policy  *storage.Policy
	mailer  mail.Mailer
	keys    *jwk.Pair
	queue   *sync.WorkQueue
	now     func() time.Time
}

// Option configures a Backend.
type Option func(*Backend)

// WithCache sets the session and access code cache.
func WithCache(c cache.Cache) Option {
	return func(b *Backend) {
		b.cache = c
	}
}

// WithBroker sets the board change broker. The backend closes it on Close.
func WithBroker(br realtime.Broker) Option {
	return func(b *Backend) {
		b.broker = br
	}
}

// WithStorage sets the attachment storage.
func WithStorage(s storage.Storage) Option {
	return func(b *Backend) {
		b.storage = s
	}
}

// WithMailer sets the mailer used for magic links.
func WithMailer(m mail.Mailer) Option {
	return func(b *Backend) {
		b.mailer = m
	}
}

// WithKeyPair sets the session token key pair.
func WithKeyPair(kp jwk.Pair) Option {
	return func(b *Backend) {
		b.keys = &kp
	}
}

// New returns a new Portal backend. Dependencies that are not given as
// options are built from cfg.
func New(ctx context.Context, cfg *config.Config, db *db.DB, st store.Store, opts ...Option) (*Backend, error) {
	logger := log.FromContext(ctx).WithPrefix("backend")
	b := &Backend{
		ctx:    ctx,
		cfg:    cfg,
		db:     db,
		store:  st,
		logger: logger,
		queue:  sync.NewWorkQueue(1, 1024), // one worker keeps activities in order
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}

	var err error
	if b.cache == nil {
		b.cache = cache.FromContext(ctx)
	}
	if b.broker == nil {
		b.broker = realtime.NewMemoryBroker()
	}
	if b.storage == nil {
		b.storage = storage.NewLocalStorage(cfg.Storage.Path)
	}
	if b.mailer == nil {
		if b.mailer, err = mail.New(ctx, cfg); err != nil {
			return nil, err //nolint:wrapcheck
		}
	}
	if b.keys == nil {
		kp, err := jwk.NewPair(cfg)
		if err != nil {
			return nil, fmt.Errorf("session key: %w", err)
		}
		b.keys = &kp
	}
	if b.policy, err = storage.NewPolicy(cfg.Storage.MaxUploadSize, cfg.Storage.AllowedTypes); err != nil {
		return nil, err //nolint:wrapcheck
	}

	b.queue.Start(ctx)
	return b, nil
}

// KeyPair returns the session token key pair.
func (d *Backend) KeyPair() jwk.Pair {
	return *d.keys
}

// Broker returns the board change broker.
func (d *Backend) Broker() realtime.Broker {
	return d.broker
}

// Ping checks the database connection.
func (d *Backend) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx) //nolint:wrapcheck
}

// Close waits for pending background work and stops the broker.
func (d *Backend) Close() error {
	d.queue.Close()
	return d.broker.Close() //nolint:wrapcheck
}

// flush waits for pending background work.
func (d *Backend) flush() {
	d.queue.Wait()
}

// async runs fn in the background. Failures are logged and never reach the
// caller.
func (d *Backend) async(name string, fn func(ctx context.Context) error) {
	ok := d.queue.Add(func(ctx context.Context) {
		if err := fn(ctx); err != nil {
			d.logger.Error("background job failed", "job", name, "err", err)
		}
	})
	if !ok {
		d.logger.Warn("background queue full, dropping job", "job", name)
	}
}
