// Package juniper holds the adapters for Juniper private MIBs.
package juniper

import (
	"context"
	"sort"

	"go-netmap/internal/mib"
	"go-netmap/internal/oid"
)

const (
	oidJnxExVlanEntry          = "1.3.6.1.4.1.2636.3.40.1.5.1.5.1"
	oidJnxExVlanPortAccessMode = "1.3.6.1.4.1.2636.3.40.1.5.1.7.1.5"
)

// VLANQuery reads JUNIPER-VLAN-MIB of EX switches. Its tables are indexed by
// an internal VLAN id rather than the VLAN tag; the id -> tag map is the
// device's, shared with the bridge forwarding table. Bridge ports resolve to
// ifIndex through the device's bridge port map.
type VLANQuery struct {
	mib.Base
}

// VLANKind registers JUNIPER-VLAN-MIB.
func VLANKind() mib.Kind {
	return mib.Kind{Name: "JUNIPER-VLAN-MIB", Tags: []mib.Tag{mib.TagLayer1, mib.TagLayer2}, New: NewVLANQuery}
}

// NewVLANQuery binds JUNIPER-VLAN-MIB to d.
func NewVLANQuery(d *mib.Device) mib.Query {
	return &VLANQuery{Base: mib.NewBase(d, "JUNIPER-VLAN-MIB", mib.OIDJnxExVlanTag, []mib.Tag{mib.TagLayer1, mib.TagLayer2}, map[string]string{
		"jnxExVlanName":           oidJnxExVlanEntry + ".2",
		"jnxExVlanTag":            mib.OIDJnxExVlanTag,
		"jnxExVlanPortAccessMode": oidJnxExVlanPortAccessMode,
	})}
}

// Layer1 returns, per ifIndex, the port access mode (1 access, 2 trunk) and
// jnxExVlanMembership: the sorted VLAN tags the port belongs to. The port
// table is indexed by internalId.basePort. A port is trunk if any of its
// rows says so.
func (q *VLANQuery) Layer1(ctx context.Context) mib.IndexedData {
	out := make(mib.IndexedData)
	tags := q.Device.JuniperVLANs(ctx)
	if len(tags) == 0 {
		return out
	}

	modes := make(map[int]int)
	members := make(map[int][]int)
	for key, mode := range mib.Walk(ctx, &q.Base, "jnxExVlanPortAccessMode", mib.RawKey, mib.Int) {
		nodes, err := oid.Last(key, 2)
		if err != nil {
			continue
		}
		tag, ok := tags[nodes[0]]
		if !ok {
			continue
		}
		ifIndex, ok := q.Device.IfIndexOf(ctx, "", nodes[1])
		if !ok {
			continue
		}
		if mode > modes[ifIndex] {
			modes[ifIndex] = mode
		}
		members[ifIndex] = append(members[ifIndex], tag)
	}
	for ifIndex, vlans := range members {
		sort.Ints(vlans)
		out.Set(ifIndex, "jnxExVlanPortAccessMode", modes[ifIndex])
		out.Set(ifIndex, "jnxExVlanMembership", vlans)
	}
	return out
}

// Layer2 returns the name and tag of every VLAN, keyed by VLAN tag.
func (q *VLANQuery) Layer2(ctx context.Context) mib.IndexedData {
	out := make(mib.IndexedData)
	tags := q.Device.JuniperVLANs(ctx)
	for id, name := range mib.Walk(ctx, &q.Base, "jnxExVlanName", mib.Index, mib.String) {
		tag, ok := tags[id]
		if !ok {
			continue
		}
		out.Set(tag, "jnxExVlanName", name)
		out.Set(tag, "jnxExVlanTag", tag)
	}
	return out
}
