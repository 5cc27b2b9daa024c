package cisco

import (
	"context"

	"go-netmap/internal/mib"
	"go-netmap/internal/oid"
)

const (
	oidCviRoutedVlanIfIndex = "1.3.6.1.4.1.9.9.128.1.1.1.1.3"
	oidVmMembershipEntry    = "1.3.6.1.4.1.9.9.68.1.2.2.1"
)

// VLANIfTableQuery reads CISCO-VLAN-IFTABLE-RELATIONSHIP-MIB: which
// interface routes each VLAN.
type VLANIfTableQuery struct {
	mib.Base
}

// VLANIfTableKind registers CISCO-VLAN-IFTABLE-RELATIONSHIP-MIB.
func VLANIfTableKind() mib.Kind {
	return mib.Kind{Name: "CISCO-VLAN-IFTABLE-RELATIONSHIP-MIB", Tags: []mib.Tag{mib.TagLayer1}, New: NewVLANIfTableQuery}
}

// NewVLANIfTableQuery binds CISCO-VLAN-IFTABLE-RELATIONSHIP-MIB to d.
func NewVLANIfTableQuery(d *mib.Device) mib.Query {
	return &VLANIfTableQuery{Base: mib.NewBase(d, "CISCO-VLAN-IFTABLE-RELATIONSHIP-MIB", oidCviRoutedVlanIfIndex, []mib.Tag{mib.TagLayer1}, map[string]string{
		"cviRoutedVlanIfIndex": oidCviRoutedVlanIfIndex,
	})}
}

// Layer1 returns, keyed by the ifIndex of the routed VLAN interface, the
// VLAN it routes. The table is indexed by vlan.physicalIfIndex.
func (q *VLANIfTableQuery) Layer1(ctx context.Context) mib.IndexedData {
	out := make(mib.IndexedData)
	for key, ifIndex := range mib.Walk(ctx, &q.Base, "cviRoutedVlanIfIndex", mib.RawKey, mib.Int) {
		vlan, err := oid.Node(key, 0)
		if err != nil || ifIndex <= 0 {
			continue
		}
		out.Set(ifIndex, "cviRoutedVlanIfIndex", vlan)
	}
	return out
}

// VLANMembershipQuery reads the access port assignments of
// CISCO-VLAN-MEMBERSHIP-MIB.
type VLANMembershipQuery struct {
	mib.Base
}

// VLANMembershipKind registers CISCO-VLAN-MEMBERSHIP-MIB.
func VLANMembershipKind() mib.Kind {
	return mib.Kind{Name: "CISCO-VLAN-MEMBERSHIP-MIB", Tags: []mib.Tag{mib.TagLayer1}, New: NewVLANMembershipQuery}
}

// NewVLANMembershipQuery binds CISCO-VLAN-MEMBERSHIP-MIB to d.
func NewVLANMembershipQuery(d *mib.Device) mib.Query {
	return &VLANMembershipQuery{Base: mib.NewBase(d, "CISCO-VLAN-MEMBERSHIP-MIB", oidVmMembershipEntry+".2", []mib.Tag{mib.TagLayer1}, map[string]string{
		"vmVlan":       oidVmMembershipEntry + ".2",
		"vmPortStatus": oidVmMembershipEntry + ".3",
	})}
}

// Layer1 returns the access VLAN and port status keyed by ifIndex.
func (q *VLANMembershipQuery) Layer1(ctx context.Context) mib.IndexedData {
	out := make(mib.IndexedData)
	mib.Store(out, "vmVlan", mib.Walk(ctx, &q.Base, "vmVlan", mib.IfIndex, mib.Int))
	mib.Store(out, "vmPortStatus", mib.Walk(ctx, &q.Base, "vmPortStatus", mib.IfIndex, mib.Int))
	return out
}
