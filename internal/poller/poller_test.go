package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-netmap/internal/mib"
	"go-netmap/internal/mib/catalog"
	"go-netmap/internal/models"
	"go-netmap/internal/snmp"
	"go-netmap/internal/snmp/snmptest"
)

type memStore struct {
	mu       sync.Mutex
	switches []models.Switch
	docs     map[uint]*mib.Document
	cycles   map[uint]string
	failures map[uint]string
}

func newMemStore(switches ...models.Switch) *memStore {
	return &memStore{
		switches: switches,
		docs:     make(map[uint]*mib.Document),
		cycles:   make(map[uint]string),
		failures: make(map[uint]string),
	}
}

func (m *memStore) Switches(ctx context.Context) ([]models.Switch, error) {
	return m.switches, nil
}

func (m *memStore) SaveDocument(ctx context.Context, sw models.Switch, cycle string, doc *mib.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[sw.ID] = doc
	m.cycles[sw.ID] = cycle
	return nil
}

func (m *memStore) RecordFailure(ctx context.Context, id uint, at int64, cause error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[id] = cause.Error()
	return nil
}

func accessSwitch() *snmptest.Session {
	s := snmptest.New()
	s.SetPDU("", mib.OIDSysObjectID, gosnmp.ObjectIdentifier, ".1.3.6.1.4.1.9.1.1208")
	s.Set("1.3.6.1.2.1.1.5.0", "access-sw1")
	s.Set(mib.OIDIfIndex+".1", 1)
	s.Set(mib.OIDIfIndex+".2", 2)
	s.Set("1.3.6.1.2.1.31.1.1.1.1.1", "Gi1/0/1")
	s.Set("1.3.6.1.2.1.31.1.1.1.1.2", "Gi1/0/2")
	s.Set("1.3.6.1.2.1.2.2.1.8.1", 1)
	s.Set("1.3.6.1.2.1.2.2.1.8.2", 2)
	return s
}

func dialer(sessions map[string]snmp.Session) Dialer {
	return func(sw models.Switch) (snmp.Session, error) {
		s, ok := sessions[sw.IPAddress]
		if !ok {
			return nil, snmp.ErrNoTarget
		}
		return s, nil
	}
}

var fixed = func() time.Time { return time.Unix(1700000000, 0) }

func TestCycle(t *testing.T) {
	store := newMemStore(
		models.Switch{ID: 1, Name: "access-sw1", IPAddress: "10.0.0.2"},
		models.Switch{ID: 2, Name: "dead-sw", IPAddress: "10.0.0.3"},
		models.Switch{ID: 3, Name: "unknown", IPAddress: "10.0.0.4"},
	)
	dead := snmptest.New().Fail("1.3.6.1", errors.New("request timeout"))
	reg := prometheus.NewRegistry()

	p := New(store, catalog.New(), Config{Workers: 2}, nil,
		WithDialer(dialer(map[string]snmp.Session{"10.0.0.2": accessSwitch(), "10.0.0.3": dead})),
		WithMetrics(NewMetrics(reg)),
		WithClock(fixed))
	require.NoError(t, p.Cycle(context.Background()))

	doc := store.docs[1]
	require.NotNil(t, doc)
	assert.Equal(t, mib.Misc{
		Timestamp:  1700000000,
		Host:       "10.0.0.2",
		Hostname:   "access-sw1",
		Enterprise: 9,
		Supported:  []string{"SNMPv2-MIB", "IF-MIB"},
	}, doc.Misc)
	assert.Equal(t, 1, doc.Layer1[1]["ifOperStatus"])
	assert.Equal(t, "Gi1/0/2", doc.Layer1[2]["ifName"])
	assert.NotEmpty(t, store.cycles[1])

	assert.Contains(t, store.failures[2], "device unreachable")
	assert.Contains(t, store.failures[3], "no target")
	assert.NotContains(t, store.docs, uint(2))

	families, err := reg.Gather()
	require.NoError(t, err)
	polls := map[string]float64{}
	for _, f := range families {
		if f.GetName() != "netmap_polls_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			polls[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{"ok": 1, "unreachable": 1, "error": 1}, polls)
}

func TestPollSwitchNothingSupported(t *testing.T) {
	store := newMemStore()
	// answers sysObjectID but through no adapter's probe
	s := snmptest.New().SetPDU("", mib.OIDSysObjectID, gosnmp.ObjectIdentifier, ".1.3.6.1.4.1.2636.1.1.1.2.31")
	sw := models.Switch{ID: 7, Name: "bare", IPAddress: "10.0.0.7"}

	reg := mib.NewRegistry(catalog.New().ForTag(mib.TagLayer3)...)
	p := New(store, reg, Config{}, nil, WithDialer(dialer(map[string]snmp.Session{"10.0.0.7": s})), WithClock(fixed))

	doc, err := p.PollSwitch(context.Background(), sw)
	assert.ErrorIs(t, err, mib.ErrNothingSupported)
	require.NotNil(t, doc)
	assert.Equal(t, 2636, doc.Misc.Enterprise)
	assert.Equal(t, "no supported MIB", store.failures[7])
}

func TestRunStopsOnCancel(t *testing.T) {
	store := newMemStore(models.Switch{ID: 1, Name: "access-sw1", IPAddress: "10.0.0.2"})
	p := New(store, catalog.New(), Config{Interval: time.Hour}, nil,
		WithDialer(dialer(map[string]snmp.Session{"10.0.0.2": accessSwitch()})))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return store.docs[1] != nil
	}, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestResult(t *testing.T) {
	assert.Equal(t, "ok", result(nil))
	assert.Equal(t, "unreachable", result(mib.ErrUnreachable))
	assert.Equal(t, "unsupported", result(mib.ErrNothingSupported))
	assert.Equal(t, "error", result(errors.New("boom")))
}
