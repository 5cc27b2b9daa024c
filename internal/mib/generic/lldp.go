package generic

import (
	"context"
	"sort"

	"go-netmap/internal/decode"
	"go-netmap/internal/mib"
	"go-netmap/internal/oid"
)

const oidLldpRemEntry = "1.0.8802.1.1.2.1.4.1.1"

// Subtypes whose identifier is a MAC address.
const (
	lldpChassisMAC = 4
	lldpPortMAC    = 3
)

// LLDPQuery reads the remote systems table of LLDP-MIB.
type LLDPQuery struct {
	mib.Base
}

// LLDPKind registers LLDP-MIB.
func LLDPKind() mib.Kind {
	return mib.Kind{Name: "LLDP-MIB", Tags: []mib.Tag{mib.TagLayer1}, New: NewLLDPQuery}
}

// NewLLDPQuery binds LLDP-MIB to d.
func NewLLDPQuery(d *mib.Device) mib.Query {
	return &LLDPQuery{Base: mib.NewBase(d, "LLDP-MIB", oidLldpRemEntry+".5", []mib.Tag{mib.TagLayer1}, map[string]string{
		"lldpRemChassisIdSubtype": oidLldpRemEntry + ".4",
		"lldpRemChassisId":        oidLldpRemEntry + ".5",
		"lldpRemPortIdSubtype":    oidLldpRemEntry + ".6",
		"lldpRemPortId":           oidLldpRemEntry + ".7",
		"lldpRemPortDesc":         oidLldpRemEntry + ".8",
		"lldpRemSysName":          oidLldpRemEntry + ".9",
		"lldpRemSysDesc":          oidLldpRemEntry + ".10",
		"lldpRemSysCapEnabled":    oidLldpRemEntry + ".12",
	})}
}

// Layer1 returns the neighbor seen on each interface. With several
// neighbors on one port the lowest remote index wins.
func (q *LLDPQuery) Layer1(ctx context.Context) mib.IndexedData {
	out := make(mib.IndexedData)
	rows := q.rows(ctx)
	if len(rows) == 0 {
		return out
	}

	set := func(attr string, values map[string]any) {
		for ifIndex, row := range rows {
			if v, ok := values[row]; ok {
				out.Set(ifIndex, attr, v)
			}
		}
	}

	chassisSubtype := mib.Walk(ctx, &q.Base, "lldpRemChassisIdSubtype", mib.RawKey, mib.Int)
	portSubtype := mib.Walk(ctx, &q.Base, "lldpRemPortIdSubtype", mib.RawKey, mib.Int)
	set("lldpRemChassisIdSubtype", anyOf(chassisSubtype))
	set("lldpRemPortIdSubtype", anyOf(portSubtype))
	set("lldpRemChassisId", q.identifiers(ctx, "lldpRemChassisId", chassisSubtype, lldpChassisMAC))
	set("lldpRemPortId", q.identifiers(ctx, "lldpRemPortId", portSubtype, lldpPortMAC))
	for _, attr := range []string{"lldpRemPortDesc", "lldpRemSysName", "lldpRemSysDesc"} {
		set(attr, anyOf(mib.Walk(ctx, &q.Base, attr, mib.RawKey, mib.String)))
	}
	set("lldpRemSysCapEnabled", anyOf(mib.Walk(ctx, &q.Base, "lldpRemSysCapEnabled", mib.RawKey, mib.Capabilities)))
	return out
}

// rows picks one remote table row per local ifIndex. The local port number
// is resolved through the bridge port map first and, failing that, used as
// an ifIndex when the device has one.
func (q *LLDPQuery) rows(ctx context.Context) map[int]string {
	keys := make([]string, 0)
	parsed := make(map[string][]int)
	for key := range mib.Walk(ctx, &q.Base, "lldpRemChassisId", mib.RawKey, mib.Octets) {
		nodes, err := oid.Nodes(key)
		if err != nil || len(nodes) != 3 {
			continue
		}
		keys = append(keys, key)
		parsed[key] = nodes
	}
	// timeMark.localPortNum.remIndex: lowest remIndex first
	sort.Slice(keys, func(i, j int) bool {
		a, b := parsed[keys[i]], parsed[keys[j]]
		if a[2] != b[2] {
			return a[2] < b[2]
		}
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		return a[1] < b[1]
	})

	rows := make(map[int]string)
	for _, key := range keys {
		ifIndex, ok := q.localIfIndex(ctx, parsed[key][1])
		if !ok {
			continue
		}
		if _, taken := rows[ifIndex]; !taken {
			rows[ifIndex] = key
		}
	}
	return rows
}

func (q *LLDPQuery) localIfIndex(ctx context.Context, port int) (int, bool) {
	if ifIndex, ok := q.Device.IfIndexOf(ctx, "", port); ok {
		return ifIndex, true
	}
	if q.Device.KnownIfIndex(ctx, port) {
		return port, true
	}
	return 0, false
}

// identifiers decodes a chassis or port id: a MAC for the MAC subtype, text
// otherwise.
func (q *LLDPQuery) identifiers(ctx context.Context, attr string, subtypes map[string]int, macSubtype int) map[string]any {
	out := make(map[string]any)
	for key, b := range mib.Walk(ctx, &q.Base, attr, mib.RawKey, mib.Octets) {
		var (
			v   string
			err error
		)
		if subtypes[key] == macSubtype {
			v, err = decode.MAC(b)
		} else {
			v, err = decode.String(b)
		}
		if err != nil {
			continue
		}
		out[key] = v
	}
	return out
}

func anyOf[V any](m map[string]V) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
