package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jo-hoe/godiary/internal/backend/database"
	"github.com/jo-hoe/godiary/internal/common"
)

type CoreService struct {
	config          *ServiceConfig
	databaseService database.DatabaseService
	queryService    *EntryQueryService
	metrics         *Metrics
}

type Option func(*options)

type options struct {
	metrics *Metrics
	now     func() time.Time
}

// WithMetrics records entry operations on m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithClock replaces time.Now for calendar filters.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func NewCoreService(ctx context.Context, config *ServiceConfig, opts ...Option) (*CoreService, error) {
	databaseService, err := getDatabaseService(ctx, config)
	if err != nil {
		return nil, err
	}
	service, err := NewCoreServiceWithDatabase(config, databaseService, opts...)
	if err != nil {
		_ = databaseService.Close()
		return nil, err
	}
	return service, nil
}

// NewCoreServiceWithDatabase wires the service around an already initialized store.
func NewCoreServiceWithDatabase(config *ServiceConfig, databaseService database.DatabaseService, opts ...Option) (*CoreService, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	location, err := config.Location()
	if err != nil {
		return nil, err
	}

	return &CoreService{
		config:          config,
		databaseService: databaseService,
		queryService:    NewEntryQueryService(databaseService, location, o.now),
		metrics:         o.metrics,
	}, nil
}

func (service *CoreService) AddEntry(ctx context.Context, content string, createdAt time.Time) (*database.Entry, error) {
	entry, err := service.databaseService.CreateEntry(ctx, content, createdAt)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			service.metrics.created("rejected")
		} else {
			service.metrics.created("error")
		}
		return nil, err
	}
	service.metrics.created("ok")
	slog.Info("entry created", "entry_id", entry.ID, "created_at", entry.CreatedAt)
	return entry, nil
}

func (service *CoreService) GetEntryByID(ctx context.Context, id int64) (*database.Entry, error) {
	return service.databaseService.GetEntryByID(ctx, id)
}

func (service *CoreService) DeleteEntry(ctx context.Context, id int64) error {
	if err := service.databaseService.DeleteEntry(ctx, id); err != nil {
		return err
	}
	service.metrics.deleted()
	slog.Info("entry deleted", "entry_id", id)
	return nil
}

func (service *CoreService) ListEntries(ctx context.Context, filter Filter) ([]*database.Entry, error) {
	service.metrics.queried(filter.Mode)
	return service.queryService.Query(ctx, filter)
}

// Today is the current date in the configured time zone.
func (service *CoreService) Today() time.Time {
	return service.queryService.Today()
}

func (service *CoreService) Location() *time.Location {
	return service.queryService.Location()
}

func (service *CoreService) IsHealthy(ctx context.Context) bool {
	return service.databaseService.DoesDatabaseExist(ctx)
}

func (service *CoreService) Close() error {
	return service.databaseService.Close()
}

func getDatabaseService(ctx context.Context, config *ServiceConfig) (database.DatabaseService, error) {
	databaseService, err := database.NewDatabase(ctx, config.Database.Type, config.Database.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("database initialized successfully", "type", config.Database.Type)
	return databaseService, nil
}
