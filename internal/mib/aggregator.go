package mib

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"go-netmap/internal/snmp"
)

var (
	// ErrUnreachable means the device did not answer the reachability
	// check. It is the only transport failure the engine surfaces.
	ErrUnreachable = errors.New("device unreachable")
	// ErrNothingSupported means the device answered but implements no MIB
	// contributing to the requested tag.
	ErrNothingSupported = errors.New("no supported MIB")
)

// DefaultConcurrency bounds the adapter fan-out of one device.
const DefaultConcurrency = 8

// Aggregator polls one device: it instantiates every registered adapter,
// probes support once and merges the supported adapters' results per tag.
// It serves exactly one device for one poll.
type Aggregator struct {
	registry *Registry
	device   *Device
	logger   *zap.Logger
	limit    int

	once      sync.Once
	supported []Query
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithLogger sets the logger. The default discards.
func WithLogger(logger *zap.Logger) AggregatorOption {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithConcurrency bounds how many adapter calls run at once.
func WithConcurrency(n int) AggregatorOption {
	return func(a *Aggregator) {
		if n > 0 {
			a.limit = n
		}
	}
}

// NewAggregator returns an Aggregator for the device behind s.
func NewAggregator(reg *Registry, s snmp.Session, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		registry: reg,
		logger:   zap.NewNop(),
		limit:    DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.device = NewDevice(s, a.logger)
	return a
}

// Device returns the device handle shared by the adapters.
func (a *Aggregator) Device() *Device { return a.device }

// Reachable checks that the device answers at all.
func (a *Aggregator) Reachable(ctx context.Context) error {
	results, err := a.device.Session().Get(ctx, OIDSysObjectID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	if len(results) == 0 {
		return fmt.Errorf("%w: no sysObjectID", ErrUnreachable)
	}
	return nil
}

// Supported instantiates every registered adapter and returns the ones the
// device implements, in registry order. Probes run concurrently; an adapter
// whose probe fails or panics is treated as unsupported. The answer is
// computed once.
func (a *Aggregator) Supported(ctx context.Context) []Query {
	a.once.Do(func() {
		kinds := a.registry.Kinds()
		queries := make([]Query, len(kinds))
		ok := make([]bool, len(kinds))

		g := new(errgroup.Group)
		g.SetLimit(a.limit)
		for i, kind := range kinds {
			g.Go(func() error {
				defer a.rescue(kind.Name, "probe")
				if ctx.Err() != nil {
					return nil
				}
				q := kind.New(a.device)
				queries[i] = q
				ok[i] = q.Supported(ctx)
				return nil
			})
		}
		_ = g.Wait()

		for i, q := range queries {
			if ok[i] {
				a.supported = append(a.supported, q)
			}
		}
		a.logger.Debug("probed MIBs",
			zap.Int("registered", len(kinds)),
			zap.Strings("supported", names(a.supported)))
	})
	return a.supported
}

// System merges every supported SystemQuery.
func (a *Aggregator) System(ctx context.Context) (KeyedData, error) {
	parts := gather(ctx, a, TagSystem, func(q Query) KeyedData {
		return q.(SystemQuery).System(ctx)
	})
	return mergeKeyed(a, TagSystem, parts)
}

// Layer1 merges every supported Layer1Query.
func (a *Aggregator) Layer1(ctx context.Context) (IndexedData, error) {
	parts := gather(ctx, a, TagLayer1, func(q Query) IndexedData {
		return q.(Layer1Query).Layer1(ctx)
	})
	return mergeIndexed(a, TagLayer1, parts)
}

// Layer2 merges every supported Layer2Query.
func (a *Aggregator) Layer2(ctx context.Context) (IndexedData, error) {
	parts := gather(ctx, a, TagLayer2, func(q Query) IndexedData {
		return q.(Layer2Query).Layer2(ctx)
	})
	return mergeIndexed(a, TagLayer2, parts)
}

// Layer3 merges every supported Layer3Query.
func (a *Aggregator) Layer3(ctx context.Context) (KeyedData, error) {
	parts := gather(ctx, a, TagLayer3, func(q Query) KeyedData {
		return q.(Layer3Query).Layer3(ctx)
	})
	return mergeKeyed(a, TagLayer3, parts)
}

// Everything fills all four sections. Tags without a supported adapter stay
// empty; ErrNothingSupported is returned only when no adapter matched at all.
func (a *Aggregator) Everything(ctx context.Context) (*Document, error) {
	doc := NewDocument()
	doc.Misc.Supported = names(a.Supported(ctx))
	if len(doc.Misc.Supported) == 0 {
		return doc, ErrNothingSupported
	}

	var err error
	if doc.System, err = a.System(ctx); err != nil && !errors.Is(err, ErrNothingSupported) {
		return doc, err
	}
	if doc.Layer1, err = a.Layer1(ctx); err != nil && !errors.Is(err, ErrNothingSupported) {
		return doc, err
	}
	if doc.Layer2, err = a.Layer2(ctx); err != nil && !errors.Is(err, ErrNothingSupported) {
		return doc, err
	}
	if doc.Layer3, err = a.Layer3(ctx); err != nil && !errors.Is(err, ErrNothingSupported) {
		return doc, err
	}
	return doc, ctx.Err()
}

// gather calls fn on every supported adapter implementing tag, concurrently.
// Results come back in registry order; adapters that panic are left out.
func gather[T any](ctx context.Context, a *Aggregator, tag Tag, fn func(Query) T) []T {
	var queries []Query
	for _, q := range a.Supported(ctx) {
		if Implements(q, tag) {
			queries = append(queries, q)
		}
	}
	if len(queries) == 0 {
		return nil
	}

	parts := make([]T, len(queries))
	done := make([]bool, len(queries))
	g := new(errgroup.Group)
	g.SetLimit(a.limit)
	for i, q := range queries {
		g.Go(func() error {
			defer a.rescue(q.Name(), string(tag))
			if ctx.Err() != nil {
				return nil
			}
			parts[i] = fn(q)
			done[i] = true
			return nil
		})
	}
	_ = g.Wait()

	out := parts[:0]
	for i, part := range parts {
		if done[i] {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		// every adapter failed: still distinct from "nothing supported"
		return []T{}
	}
	return out
}

func mergeIndexed(a *Aggregator, tag Tag, parts []IndexedData) (IndexedData, error) {
	merged := make(IndexedData)
	if parts == nil {
		return merged, ErrNothingSupported
	}
	for _, part := range parts {
		if conflicts := merged.Merge(part); len(conflicts) > 0 {
			a.logger.Warn("attribute claimed by two MIBs", zap.String("tag", string(tag)), zap.Strings("leaves", conflicts))
		}
	}
	return merged, nil
}

func mergeKeyed(a *Aggregator, tag Tag, parts []KeyedData) (KeyedData, error) {
	merged := make(KeyedData)
	if parts == nil {
		return merged, ErrNothingSupported
	}
	for _, part := range parts {
		if conflicts := merged.Merge(part); len(conflicts) > 0 {
			a.logger.Warn("attribute claimed by two MIBs", zap.String("tag", string(tag)), zap.Strings("leaves", conflicts))
		}
	}
	return merged, nil
}

func (a *Aggregator) rescue(name, stage string) {
	if r := recover(); r != nil {
		a.logger.Warn("MIB query panicked", zap.String("mib", name), zap.String("stage", stage), zap.Any("panic", r))
	}
}

func names(queries []Query) []string {
	out := make([]string, len(queries))
	for i, q := range queries {
		out[i] = q.Name()
	}
	return out
}
