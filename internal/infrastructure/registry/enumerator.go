package registry

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"property-registry.backend/internal/domain/entities"
	domainerrors "property-registry.backend/internal/domain/errors"
	"property-registry.backend/internal/infrastructure/metrics"
	"property-registry.backend/pkg/logger"
)

const defaultEnumerateConcurrency = 8

// Enumeration is a best-effort gather: Records keeps the requested id order
// and Omitted counts the ids that could not be read.
type Enumeration struct {
	Records []*entities.PropertyRecord
	Omitted int
}

// Enumerator materializes the full record set through the shim
type Enumerator struct {
	shim        *Shim
	concurrency int
	metrics     *metrics.Metrics
}

func NewEnumerator(shim *Shim, concurrency int, m *metrics.Metrics) *Enumerator {
	if concurrency <= 0 {
		concurrency = defaultEnumerateConcurrency
	}
	return &Enumerator{shim: shim, concurrency: concurrency, metrics: m}
}

// All lists the contract's ids and fetches every record. Only a failure to
// list the ids is an error.
func (e *Enumerator) All(ctx context.Context) (*Enumeration, error) {
	ids, err := e.shim.PropertyIDs(ctx)
	if err != nil {
		return nil, err
	}
	return e.Fetch(ctx, ids)
}

// Fetch reads each id concurrently. A record that fails is logged and left
// out; it never fails the enumeration.
func (e *Enumerator) Fetch(ctx context.Context, ids []uint64) (*Enumeration, error) {
	slots := make([]*entities.PropertyRecord, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			record, err := e.shim.Property(gctx, id)
			if err != nil {
				logger.Warn(ctx, "Skipping property that could not be read",
					zap.Uint64("property_id", id),
					zap.Error(&domainerrors.PerRecordDecodeError{ID: id, Err: err}),
				)
				return nil
			}
			slots[i] = record
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &Enumeration{Records: make([]*entities.PropertyRecord, 0, len(ids))}
	for _, record := range slots {
		if record == nil {
			out.Omitted++
			continue
		}
		out.Records = append(out.Records, record)
	}
	e.metrics.Enumerated(len(out.Records), out.Omitted)
	return out, nil
}
