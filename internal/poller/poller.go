// Package poller runs the MIB engine over the switch inventory on a timer
// and hands every document to the store.
package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"go-netmap/internal/mib"
	"go-netmap/internal/models"
	"go-netmap/internal/snmp"
)

// Store is what the poller needs from persistence.
type Store interface {
	Switches(ctx context.Context) ([]models.Switch, error)
	SaveDocument(ctx context.Context, sw models.Switch, cycle string, doc *mib.Document) error
	RecordFailure(ctx context.Context, id uint, at int64, cause error) error
}

// Dialer opens a session to one switch.
type Dialer func(sw models.Switch) (snmp.Session, error)

// Config tunes the poll loop.
type Config struct {
	Interval         time.Duration
	Workers          int // switches polled at once
	ProbeConcurrency int // MIB adapters run at once per switch
	Timeout          time.Duration
	Retries          int
}

// Poller polls every switch of the inventory once per interval.
type Poller struct {
	store    Store
	registry *mib.Registry
	cfg      Config
	logger   *zap.Logger
	metrics  *Metrics
	dial     Dialer
	now      func() time.Time
}

// Option configures a Poller.
type Option func(*Poller)

// WithDialer replaces the gosnmp session factory.
func WithDialer(dial Dialer) Option {
	return func(p *Poller) { p.dial = dial }
}

// WithMetrics records poll outcomes into m.
func WithMetrics(m *Metrics) Option {
	return func(p *Poller) { p.metrics = m }
}

// WithClock overrides time.Now for document timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Poller) { p.now = now }
}

// New returns a Poller. Zero config values fall back to defaults.
func New(store Store, reg *mib.Registry, cfg Config, logger *zap.Logger, opts ...Option) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Minute
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.ProbeConcurrency <= 0 {
		cfg.ProbeConcurrency = mib.DefaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Poller{
		store:    store,
		registry: reg,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
	p.dial = p.dialSNMP
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Poller) dialSNMP(sw models.Switch) (snmp.Session, error) {
	c, err := snmp.New(snmp.Credentials{
		Host:         sw.IPAddress,
		Port:         sw.Port,
		Version:      sw.Version,
		Community:    sw.Community,
		Username:     sw.Username,
		AuthProtocol: sw.AuthProtocol,
		AuthPassword: sw.AuthPassword,
		PrivProtocol: sw.PrivProtocol,
		PrivPassword: sw.PrivPassword,
		Timeout:      p.cfg.Timeout,
		Retries:      p.cfg.Retries,
	}, p.logger)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Run polls immediately and then every interval until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()
	for {
		if err := p.Cycle(ctx); err != nil && ctx.Err() == nil {
			p.logger.Error("polling cycle failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Cycle polls every switch once. A failing switch does not stop the others;
// only failing to read the inventory is returned.
func (p *Poller) Cycle(ctx context.Context) error {
	switches, err := p.store.Switches(ctx)
	if err != nil {
		return fmt.Errorf("list switches: %w", err)
	}

	cycle := uuid.NewString()
	start := time.Now()
	logger := p.logger.With(zap.String("cycle", cycle))

	failed := make([]bool, len(switches))
	g := new(errgroup.Group)
	g.SetLimit(p.cfg.Workers)
	for i, sw := range switches {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if _, err := p.poll(ctx, sw, cycle); err != nil {
				failed[i] = true
			}
			return nil
		})
	}
	_ = g.Wait()

	var nfailed int
	for _, f := range failed {
		if f {
			nfailed++
		}
	}
	logger.Info("polling cycle complete",
		zap.Int("switches", len(switches)),
		zap.Int("failed", nfailed),
		zap.Duration("took", time.Since(start)))
	return ctx.Err()
}

// PollSwitch polls one switch outside the regular cycle.
func (p *Poller) PollSwitch(ctx context.Context, sw models.Switch) (*mib.Document, error) {
	return p.poll(ctx, sw, uuid.NewString())
}

func (p *Poller) poll(ctx context.Context, sw models.Switch, cycle string) (*mib.Document, error) {
	start := time.Now()
	logger := p.logger.With(zap.String("switch", sw.Name), zap.String("host", sw.IPAddress), zap.String("cycle", cycle))
	logger.Debug("polling")

	doc, err := p.collect(ctx, sw, logger)
	p.metrics.observe(sw.Name, doc, err, time.Since(start))
	if err != nil {
		logger.Warn("poll failed", zap.Error(err))
		if rerr := p.store.RecordFailure(ctx, sw.ID, p.now().Unix(), err); rerr != nil {
			logger.Error("record failure", zap.Error(rerr))
		}
		return doc, err
	}

	if err := p.store.SaveDocument(ctx, sw, cycle, doc); err != nil {
		logger.Error("save document", zap.Error(err))
		return doc, fmt.Errorf("save %s: %w", sw.Name, err)
	}
	logger.Debug("polled",
		zap.Strings("mibs", doc.Misc.Supported),
		zap.Int("interfaces", len(doc.Layer1)),
		zap.Duration("took", time.Since(start)))
	return doc, nil
}

func (p *Poller) collect(ctx context.Context, sw models.Switch, logger *zap.Logger) (*mib.Document, error) {
	session, err := p.dial(sw)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", sw.IPAddress, err)
	}

	agg := mib.NewAggregator(p.registry, session,
		mib.WithLogger(logger),
		mib.WithConcurrency(p.cfg.ProbeConcurrency))
	if err := agg.Reachable(ctx); err != nil {
		return nil, err
	}

	doc, err := agg.Everything(ctx)
	if doc == nil {
		return nil, err
	}
	doc.Misc.Timestamp = p.now().Unix()
	doc.Misc.Host = sw.IPAddress
	doc.Misc.Hostname = cast.ToString(doc.System["sysName"]["0"])
	doc.Misc.Enterprise = agg.Device().Enterprise(ctx)
	return doc, err
}
