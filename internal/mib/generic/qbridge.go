package generic

import (
	"context"
	"sort"

	"go-netmap/internal/mib"
)

const (
	oidDot1qVlanStaticEntry = "1.3.6.1.2.1.17.7.1.4.3.1"
	oidDot1qPvid            = "1.3.6.1.2.1.17.7.1.4.5.1.1"
)

// QBridgeQuery reads the VLAN configuration of Q-BRIDGE-MIB.
type QBridgeQuery struct {
	mib.Base
}

// QBridgeKind registers Q-BRIDGE-MIB.
func QBridgeKind() mib.Kind {
	return mib.Kind{Name: "Q-BRIDGE-MIB", Tags: []mib.Tag{mib.TagLayer1, mib.TagLayer2}, New: NewQBridgeQuery}
}

// NewQBridgeQuery binds Q-BRIDGE-MIB to d.
func NewQBridgeQuery(d *mib.Device) mib.Query {
	return &QBridgeQuery{Base: mib.NewBase(d, "Q-BRIDGE-MIB", oidDot1qPvid, []mib.Tag{mib.TagLayer1, mib.TagLayer2}, map[string]string{
		"dot1qPvid":                  oidDot1qPvid,
		"dot1qVlanStaticName":        oidDot1qVlanStaticEntry + ".1",
		"dot1qVlanStaticEgressPorts": oidDot1qVlanStaticEntry + ".2",
	})}
}

// Layer1 returns, per ifIndex, the port VLAN id and the sorted list of VLANs
// the port egresses.
func (q *QBridgeQuery) Layer1(ctx context.Context) mib.IndexedData {
	out := make(mib.IndexedData)
	for port, vlan := range mib.Walk(ctx, &q.Base, "dot1qPvid", mib.Index, mib.Int) {
		if ifIndex, ok := q.Device.IfIndexOf(ctx, "", port); ok {
			out.Set(ifIndex, "dot1qPvid", vlan)
		}
	}

	members := make(map[int][]int)
	for vlan, ports := range mib.Walk(ctx, &q.Base, "dot1qVlanStaticEgressPorts", mib.Index, mib.PortList) {
		for _, port := range ports {
			if ifIndex, ok := q.Device.IfIndexOf(ctx, "", port); ok {
				members[ifIndex] = append(members[ifIndex], vlan)
			}
		}
	}
	for ifIndex, vlans := range members {
		sort.Ints(vlans)
		out.Set(ifIndex, "dot1qVlanStaticEgressPorts", vlans)
	}
	return out
}

// Layer2 returns the VLAN names keyed by VLAN tag.
func (q *QBridgeQuery) Layer2(ctx context.Context) mib.IndexedData {
	out := make(mib.IndexedData)
	mib.Store(out, "dot1qVlanStaticName", mib.Walk(ctx, &q.Base, "dot1qVlanStaticName", mib.Index, mib.String))
	return out
}
