// Package cisco holds the adapters for Cisco private MIBs.
package cisco

import (
	"context"

	"go-netmap/internal/mib"
	"go-netmap/internal/oid"
)

const (
	oidC2900PortEntry = "1.3.6.1.4.1.9.9.87.1.4.1.1"
	oidStackPortEntry = "1.3.6.1.4.1.9.5.1.4.1.1"
)

// modulePort is the module.port index of the per-port tables of older
// Catalyst MIBs.
type modulePort [2]int

func modulePortKey(key string) (modulePort, error) {
	nodes, err := oid.Last(key, 2)
	if err != nil {
		return modulePort{}, err
	}
	return modulePort{nodes[0], nodes[1]}, nil
}

// byIfIndex re-keys a module.port column through a module.port -> ifIndex
// column. Rows without an ifIndex are dropped.
func byIfIndex[V any](out mib.IndexedData, attr string, ifIndexes map[modulePort]int, column map[modulePort]V) {
	for port, v := range column {
		if ifIndex, ok := ifIndexes[port]; ok && ifIndex > 0 {
			out.Set(ifIndex, attr, v)
		}
	}
}

// C2900Query reads the port table of CISCO-C2900-MIB (Catalyst 2900XL and
// 3500XL).
type C2900Query struct {
	mib.Base
}

// C2900Kind registers CISCO-C2900-MIB.
func C2900Kind() mib.Kind {
	return mib.Kind{Name: "CISCO-C2900-MIB", Tags: []mib.Tag{mib.TagLayer1}, New: NewC2900Query}
}

// NewC2900Query binds CISCO-C2900-MIB to d.
func NewC2900Query(d *mib.Device) mib.Query {
	return &C2900Query{Base: mib.NewBase(d, "CISCO-C2900-MIB", oidC2900PortEntry+".25", []mib.Tag{mib.TagLayer1}, map[string]string{
		"c2900PortLinkbeatStatus": oidC2900PortEntry + ".18",
		"c2900PortIfIndex":        oidC2900PortEntry + ".25",
		"c2900PortDuplexStatus":   oidC2900PortEntry + ".32",
	})}
}

// Layer1 returns link beat and duplex status keyed by ifIndex.
func (q *C2900Query) Layer1(ctx context.Context) mib.IndexedData {
	out := make(mib.IndexedData)
	ifIndexes := mib.Walk(ctx, &q.Base, "c2900PortIfIndex", modulePortKey, mib.Int)
	if len(ifIndexes) == 0 {
		return out
	}
	byIfIndex(out, "c2900PortLinkbeatStatus", ifIndexes, mib.Walk(ctx, &q.Base, "c2900PortLinkbeatStatus", modulePortKey, mib.Int))
	byIfIndex(out, "c2900PortDuplexStatus", ifIndexes, mib.Walk(ctx, &q.Base, "c2900PortDuplexStatus", modulePortKey, mib.Int))
	return out
}

// StackQuery reads the port table of CISCO-STACK-MIB.
type StackQuery struct {
	mib.Base
}

// StackKind registers CISCO-STACK-MIB.
func StackKind() mib.Kind {
	return mib.Kind{Name: "CISCO-STACK-MIB", Tags: []mib.Tag{mib.TagLayer1}, New: NewStackQuery}
}

// NewStackQuery binds CISCO-STACK-MIB to d.
func NewStackQuery(d *mib.Device) mib.Query {
	return &StackQuery{Base: mib.NewBase(d, "CISCO-STACK-MIB", oidStackPortEntry+".10", []mib.Tag{mib.TagLayer1}, map[string]string{
		"portDuplex":  oidStackPortEntry + ".10",
		"portIfIndex": oidStackPortEntry + ".11",
	})}
}

// Layer1 returns portDuplex keyed by ifIndex: 1 half, 2 full, 3 disagree,
// 4 auto.
func (q *StackQuery) Layer1(ctx context.Context) mib.IndexedData {
	out := make(mib.IndexedData)
	ifIndexes := mib.Walk(ctx, &q.Base, "portIfIndex", modulePortKey, mib.Int)
	if len(ifIndexes) == 0 {
		return out
	}
	byIfIndex(out, "portDuplex", ifIndexes, mib.Walk(ctx, &q.Base, "portDuplex", modulePortKey, mib.Int))
	return out
}

const oidSwPortDuplexStatus = "1.3.6.1.4.1.437.1.1.3.3.1.1.30"

// ESSwitchQuery reads ESSWITCH-MIB of the Catalyst 1900 and 2820, whose
// ports are indexed by ifIndex.
type ESSwitchQuery struct {
	mib.Base
}

// ESSwitchKind registers ESSWITCH-MIB.
func ESSwitchKind() mib.Kind {
	return mib.Kind{Name: "ESSWITCH-MIB", Tags: []mib.Tag{mib.TagLayer1}, New: NewESSwitchQuery}
}

// NewESSwitchQuery binds ESSWITCH-MIB to d.
func NewESSwitchQuery(d *mib.Device) mib.Query {
	return &ESSwitchQuery{Base: mib.NewBase(d, "ESSWITCH-MIB", oidSwPortDuplexStatus, []mib.Tag{mib.TagLayer1}, map[string]string{
		"swPortDuplexStatus": oidSwPortDuplexStatus,
	})}
}

// Layer1 returns swPortDuplexStatus keyed by ifIndex.
func (q *ESSwitchQuery) Layer1(ctx context.Context) mib.IndexedData {
	out := make(mib.IndexedData)
	mib.Store(out, "swPortDuplexStatus", mib.Walk(ctx, &q.Base, "swPortDuplexStatus", mib.IfIndex, mib.Int))
	return out
}
