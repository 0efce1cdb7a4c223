package calculation

import (
	"context"
	"errors"
	"sync"
	"time"

	"nebenkosten/internal/core/apperror"
	"nebenkosten/internal/core/id"
	nk "nebenkosten/internal/domain/nebenkosten"
	"nebenkosten/pkg/logger"
)

// Operation names reported to the Recorder.
const (
	OpSetData        = "set_data"
	OpUpdateLandlord = "update_landlord"
	OpUpdateProperty = "update_property"
	OpUpdateTenant   = "update_tenant"
	OpAddCostItem    = "add_cost_item"
	OpRemoveCostItem = "remove_cost_item"
	OpUpdateCostItem = "update_cost_item"
	OpReset          = "reset"
)

// Store is the authoritative in-memory copy of one CalculationData.
// Every operation installs a new aggregate and persists it. No operation
// returns an error: unknown ids are no-ops and storage failures are absorbed.
type Store struct {
	mu   sync.Mutex
	data nk.CalculationData

	key          string
	writeTimeout time.Duration
	syncWrites   bool
	now          func() time.Time
	newID        func() string
	log          *logger.Logger
	recorder     Recorder

	blobs  BlobStore
	writer *writer
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for rehydration and persistence messages.
func WithLogger(log *logger.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithRecorder sets the activity observer.
func WithRecorder(rec Recorder) Option {
	return func(s *Store) { s.recorder = rec }
}

// WithClock sets the time source used for the default billing periods.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator sets the cost item id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithSyncWrites makes every mutation write to storage before returning.
// Failures are still absorbed. Meant for short-lived processes such as the CLI.
func WithSyncWrites() Option {
	return func(s *Store) { s.syncWrites = true }
}

// WithWriteTimeout bounds a single storage write.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Store) { s.writeTimeout = d }
}

// WithStorageKey overrides the namespace the snapshot is stored under.
func WithStorageKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// New creates a store and rehydrates it from blobs. A missing, unreadable or
// undecodable snapshot yields the default aggregate; New never fails.
func New(ctx context.Context, blobs BlobStore, opts ...Option) *Store {
	s := &Store{
		key:          StorageKey,
		writeTimeout: 5 * time.Second,
		now:          time.Now,
		newID:        id.NewString,
		log:          logger.Default(),
		recorder:     nopRecorder{},
		blobs:        blobs,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("calculation_store")

	s.data = s.rehydrate(ctx)
	s.writer = newWriter(blobs, s.key, s.writeTimeout, !s.syncWrites, s.log, s.recorder)
	return s
}

func (s *Store) rehydrate(ctx context.Context) nk.CalculationData {
	blob, err := s.blobs.Get(ctx, s.key)
	switch {
	case apperror.IsNotFound(err):
		s.recorder.Rehydrated(OutcomeEmpty)
		s.log.WithContext(ctx).Infow("no stored calculation, starting with defaults", "key", s.key)
		return nk.Default(s.now())
	case err != nil:
		s.recorder.Rehydrated(OutcomeReadError)
		s.log.WithContext(ctx).Warnw("read stored calculation failed, starting with defaults", "key", s.key, "error", err)
		return nk.Default(s.now())
	}

	data, err := decodeSnapshot(blob, s.now())
	if err != nil {
		outcome := OutcomeCorrupt
		if errors.Is(err, errVersionMismatch) {
			outcome = OutcomeVersionMismatch
		}
		s.recorder.Rehydrated(outcome)
		s.log.WithContext(ctx).Warnw("discarding stored calculation", "key", s.key, "outcome", outcome, "error", err)
		return nk.Default(s.now())
	}

	s.recorder.Rehydrated(OutcomeRestored)
	s.log.WithContext(ctx).Infow("calculation restored", "key", s.key, "items", len(data.Items))
	return data
}

// Data returns a deep copy of the current aggregate.
func (s *Store) Data() nk.CalculationData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Clone()
}

// Validate runs the schema over the current aggregate.
func (s *Store) Validate() (nk.CalculationData, error) {
	return nk.ValidateCalculation(s.Data())
}

// SetData replaces every supplied top-level entity wholesale.
func (s *Store) SetData(p CalculationPatch) {
	s.mutate(OpSetData, func(d nk.CalculationData) nk.CalculationData {
		return applyCalculation(d, p)
	})
}

// UpdateLandlord merges p into the landlord only.
func (s *Store) UpdateLandlord(p LandlordPatch) {
	s.mutate(OpUpdateLandlord, func(d nk.CalculationData) nk.CalculationData {
		d.Landlord = applyLandlord(d.Landlord, p)
		return d
	})
}

// UpdateProperty merges p into the property only.
func (s *Store) UpdateProperty(p PropertyPatch) {
	s.mutate(OpUpdateProperty, func(d nk.CalculationData) nk.CalculationData {
		d.Property = applyProperty(d.Property, p)
		return d
	})
}

// UpdateTenant merges p into the tenant only.
func (s *Store) UpdateTenant(p TenantPatch) {
	s.mutate(OpUpdateTenant, func(d nk.CalculationData) nk.CalculationData {
		d.Tenant = applyTenant(d.Tenant, p)
		return d
	})
}

// AddCostItem appends a default cost item with a fresh id and returns the id.
func (s *Store) AddCostItem() string {
	itemID := s.newID()
	s.mutate(OpAddCostItem, func(d nk.CalculationData) nk.CalculationData {
		items := make([]nk.CostItem, len(d.Items), len(d.Items)+1)
		copy(items, d.Items)
		d.Items = append(items, nk.NewCostItem(itemID))
		return d
	})
	return itemID
}

// RemoveCostItem removes the item with the given id. It reports whether an
// item was removed; an unknown id leaves the items unchanged.
func (s *Store) RemoveCostItem(itemID string) bool {
	removed := false
	s.mutate(OpRemoveCostItem, func(d nk.CalculationData) nk.CalculationData {
		items := make([]nk.CostItem, 0, len(d.Items))
		for _, item := range d.Items {
			if item.ID == itemID {
				removed = true
				continue
			}
			items = append(items, item)
		}
		if removed {
			d.Items = items
		}
		return d
	})
	return removed
}

// UpdateCostItem merges p into the item with the given id. It reports whether
// the item exists; an unknown id is a no-op.
func (s *Store) UpdateCostItem(itemID string, p CostItemPatch) bool {
	found := false
	s.mutate(OpUpdateCostItem, func(d nk.CalculationData) nk.CalculationData {
		items := make([]nk.CostItem, len(d.Items))
		for i, item := range d.Items {
			if item.ID == itemID {
				found = true
				item = applyCostItem(item, p)
			}
			items[i] = item
		}
		if found {
			d.Items = items
		}
		return d
	})
	return found
}

// Reset replaces the aggregate with the default initial state.
func (s *Store) Reset() {
	s.mutate(OpReset, func(nk.CalculationData) nk.CalculationData {
		return nk.Default(s.now())
	})
}

// Flush waits until every snapshot produced so far has been handed to storage.
func (s *Store) Flush(ctx context.Context) error {
	return s.writer.flush(ctx)
}

// Close flushes pending snapshots and stops the background writer. Later
// mutations still apply in memory but are no longer persisted.
func (s *Store) Close(ctx context.Context) error {
	return s.writer.close(ctx)
}

// mutate installs fn's result and persists it. fn receives the current
// aggregate by value and must not modify its slices or pointers in place.
func (s *Store) mutate(op string, fn func(nk.CalculationData) nk.CalculationData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = fn(s.data)
	s.recorder.Mutation(op)

	blob, err := encodeSnapshot(s.data)
	if err != nil {
		s.recorder.Persisted(err)
		s.log.Warnw("serialize calculation failed", "op", op, "error", err)
		return
	}
	s.writer.persist(blob)
}
