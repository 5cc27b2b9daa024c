package mib

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"go-netmap/internal/decode"
	"go-netmap/internal/oid"
	"go-netmap/internal/snmp"
)

// OIDs the engine itself needs for cross referencing.
const (
	OIDSysObjectID          = "1.3.6.1.2.1.1.2.0"
	OIDIfIndex              = "1.3.6.1.2.1.2.2.1.1"
	OIDDot1dBasePortIfIndex = "1.3.6.1.2.1.17.1.4.1.2"
	OIDVtpVlanState         = "1.3.6.1.4.1.9.9.46.1.3.1.1.2"
	OIDJnxExVlanTag         = "1.3.6.1.4.1.2636.3.40.1.5.1.5.1.5"
)

// IANA enterprise numbers with vendor specific handling.
const (
	EnterpriseCisco   = 9
	EnterpriseJuniper = 2636
)

// Device wraps the Session of one device for one poll. It owns the
// cross references every adapter of that device shares: the enterprise
// number, the ifIndex list, the bridge port map per SNMP context, the active
// Cisco VLANs with their context naming style, and the Juniper VLAN ids. Each is computed at most
// once and is read only afterwards. A Device must not outlive its poll.
type Device struct {
	session snmp.Session
	logger  *zap.Logger

	enterpriseOnce sync.Once
	enterprise     int

	ifIndexOnce sync.Once
	ifIndexes   []int

	mu        sync.Mutex
	basePorts map[string]*basePortEntry

	vlansOnce  sync.Once
	ciscoVLANs []int

	styleOnce sync.Once
	style     ContextStyle

	juniperOnce  sync.Once
	juniperVLANs map[int]int
}

type basePortEntry struct {
	once  sync.Once
	ports map[int]int
}

// NewDevice binds s for one poll.
func NewDevice(s snmp.Session, logger *zap.Logger) *Device {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Device{
		session:   s,
		logger:    logger,
		basePorts: make(map[string]*basePortEntry),
	}
}

// Session returns the underlying session.
func (d *Device) Session() snmp.Session { return d.session }

// Logger returns the device scoped logger.
func (d *Device) Logger() *zap.Logger { return d.logger }

// Exists wraps Session.Exists.
func (d *Device) Exists(ctx context.Context, o string, opts ...snmp.Option) bool {
	return d.session.Exists(ctx, o, opts...)
}

// Get returns nil on transport failure.
func (d *Device) Get(ctx context.Context, o string, opts ...snmp.Option) snmp.Results {
	results, err := d.session.Get(ctx, o, opts...)
	if err != nil {
		d.logger.Debug("get failed", zap.String("oid", o), zap.Error(err))
		return nil
	}
	return results
}

// Walk returns nil on transport failure.
func (d *Device) Walk(ctx context.Context, o string, opts ...snmp.Option) snmp.Results {
	results, err := d.session.Walk(ctx, o, opts...)
	if err != nil {
		d.logger.Debug("walk failed", zap.String("oid", o), zap.Error(err))
		return nil
	}
	return results
}

// SafeWalk wraps Session.SafeWalk.
func (d *Device) SafeWalk(ctx context.Context, o string, opts ...snmp.Option) snmp.Results {
	return d.session.SafeWalk(ctx, o, opts...)
}

// Enterprise returns the IANA enterprise number from sysObjectID, or 0.
func (d *Device) Enterprise(ctx context.Context) int {
	d.enterpriseOnce.Do(func() {
		for _, pdu := range d.Get(ctx, OIDSysObjectID) {
			id, err := ObjectID(pdu)
			if err != nil {
				continue
			}
			if n, err := oid.Enterprise(id); err == nil {
				d.enterprise = n
			}
		}
	})
	return d.enterprise
}

// IsCisco reports whether sysObjectID is below Cisco's enterprise.
func (d *Device) IsCisco(ctx context.Context) bool {
	return d.Enterprise(ctx) == EnterpriseCisco
}

// IsJuniper reports whether sysObjectID is below Juniper's enterprise.
func (d *Device) IsJuniper(ctx context.Context) bool {
	return d.Enterprise(ctx) == EnterpriseJuniper
}

// IfIndexes returns the sorted ifIndex values of the device.
func (d *Device) IfIndexes(ctx context.Context) []int {
	d.ifIndexOnce.Do(func() {
		seen := make(map[int]bool)
		for _, pdu := range d.Walk(ctx, OIDIfIndex) {
			n, err := decode.Int(pdu.Value)
			if err != nil || seen[n] {
				continue
			}
			seen[n] = true
			d.ifIndexes = append(d.ifIndexes, n)
		}
		sort.Ints(d.ifIndexes)
	})
	return d.ifIndexes
}

// KnownIfIndex reports whether n is an ifIndex of the device.
func (d *Device) KnownIfIndex(ctx context.Context, n int) bool {
	indexes := d.IfIndexes(ctx)
	i := sort.SearchInts(indexes, n)
	return i < len(indexes) && indexes[i] == n
}

// BasePorts returns the dot1dBasePort to ifIndex map for an SNMP context
// ("" for the default one). The map is empty when the bridge table is
// missing or unusable.
func (d *Device) BasePorts(ctx context.Context, scope string) map[int]int {
	d.mu.Lock()
	entry, ok := d.basePorts[scope]
	if !ok {
		entry = &basePortEntry{}
		d.basePorts[scope] = entry
	}
	d.mu.Unlock()

	entry.once.Do(func() {
		entry.ports = d.resolveBasePorts(ctx, scope)
	})
	return entry.ports
}

func (d *Device) resolveBasePorts(ctx context.Context, scope string) map[int]int {
	var opts []snmp.Option
	if scope != "" {
		opts = append(opts, snmp.Context(scope))
	}

	rows := make(map[int]int)
	for key, pdu := range d.SafeWalk(ctx, OIDDot1dBasePortIfIndex, opts...) {
		port, err := oid.Index(key)
		if err != nil {
			d.skip("BRIDGE-MIB", "dot1dBasePortIfIndex", key, err)
			continue
		}
		ifIndex, err := decode.Int(pdu.Value)
		if err != nil {
			d.skip("BRIDGE-MIB", "dot1dBasePortIfIndex", key, err)
			continue
		}
		rows[port] = ifIndex
	}

	offset, ok := Offset(rows)
	if !ok {
		return map[int]int{}
	}
	ports := BasePortMap(d.IfIndexes(ctx), offset)
	d.logger.Debug("resolved bridge ports",
		zap.String("context", scope),
		zap.Int("offset", offset),
		zap.Int("ports", len(ports)))
	return ports
}

// Offset derives ifIndex - dot1dBasePort from the first row, the one with
// the lowest base port, of a dot1dBasePortIfIndex walk.
func Offset(rows map[int]int) (int, bool) {
	if len(rows) == 0 {
		return 0, false
	}
	first := -1
	for port := range rows {
		if first < 0 || port < first {
			first = port
		}
	}
	return rows[first] - first, true
}

// BasePortMap returns basePort -> ifIndex for every known ifIndex, using
// basePort = ifIndex - offset. The full bridge table is not used because
// loaded devices silently drop its rows.
func BasePortMap(ifIndexes []int, offset int) map[int]int {
	ports := make(map[int]int, len(ifIndexes))
	for _, ifIndex := range ifIndexes {
		port := ifIndex - offset
		if port < 0 {
			continue
		}
		ports[port] = ifIndex
	}
	return ports
}

// IfIndexOf resolves a bridge port of the given context to its ifIndex.
func (d *Device) IfIndexOf(ctx context.Context, scope string, port int) (int, bool) {
	ifIndex, ok := d.BasePorts(ctx, scope)[port]
	return ifIndex, ok
}

// JuniperVLANs returns JUNIPER-VLAN-MIB internal VLAN id -> VLAN tag from a
// walk of jnxExVlanTag. EX switches index their VLAN tables, and the FDB ids
// of dot1qTpFdbPort, by the internal id.
func (d *Device) JuniperVLANs(ctx context.Context) map[int]int {
	d.juniperOnce.Do(func() {
		d.juniperVLANs = make(map[int]int)
		for key, pdu := range d.Walk(ctx, OIDJnxExVlanTag) {
			id, err := oid.Index(key)
			if err != nil {
				d.skip("JUNIPER-VLAN-MIB", "jnxExVlanTag", key, err)
				continue
			}
			tag, err := decode.Int(pdu.Value)
			if err != nil {
				d.skip("JUNIPER-VLAN-MIB", "jnxExVlanTag", key, err)
				continue
			}
			d.juniperVLANs[id] = tag
		}
	})
	return d.juniperVLANs
}
