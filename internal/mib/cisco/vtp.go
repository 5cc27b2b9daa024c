package cisco

import (
	"context"
	"sort"

	"go-netmap/internal/mib"
	"go-netmap/internal/oid"
)

const (
	oidVlanTrunkPortEntry = "1.3.6.1.4.1.9.9.46.1.6.1.1"
	oidVtpVlanEntry       = "1.3.6.1.4.1.9.9.46.1.3.1.1"
)

// vlanTrunkPortDynamicStatus values.
const trunking = 1

// trunkBlocks are the four 1024 bit vlanTrunkPortVlansEnabled columns and
// the VLAN number of their first bit.
var trunkBlocks = []struct {
	attr   string
	offset int
}{
	{"vlanTrunkPortVlansEnabled", 0},
	{"vlanTrunkPortVlansEnabled2k", 1024},
	{"vlanTrunkPortVlansEnabled3k", 2048},
	{"vlanTrunkPortVlansEnabled4k", 3072},
}

// VTPQuery reads CISCO-VTP-MIB: trunk port configuration and the VLAN table.
type VTPQuery struct {
	mib.Base
}

// VTPKind registers CISCO-VTP-MIB.
func VTPKind() mib.Kind {
	return mib.Kind{Name: "CISCO-VTP-MIB", Tags: []mib.Tag{mib.TagLayer1, mib.TagLayer2}, New: NewVTPQuery}
}

// NewVTPQuery binds CISCO-VTP-MIB to d.
func NewVTPQuery(d *mib.Device) mib.Query {
	return &VTPQuery{Base: mib.NewBase(d, "CISCO-VTP-MIB", mib.OIDVtpVlanState, []mib.Tag{mib.TagLayer1, mib.TagLayer2}, map[string]string{
		"vlanTrunkPortEncapsulationType": oidVlanTrunkPortEntry + ".3",
		"vlanTrunkPortVlansEnabled":      oidVlanTrunkPortEntry + ".4",
		"vlanTrunkPortNativeVlan":        oidVlanTrunkPortEntry + ".5",
		"vlanTrunkPortDynamicState":      oidVlanTrunkPortEntry + ".13",
		"vlanTrunkPortDynamicStatus":     oidVlanTrunkPortEntry + ".14",
		"vlanTrunkPortVlansEnabled2k":    oidVlanTrunkPortEntry + ".17",
		"vlanTrunkPortVlansEnabled3k":    oidVlanTrunkPortEntry + ".18",
		"vlanTrunkPortVlansEnabled4k":    oidVlanTrunkPortEntry + ".19",
		"vtpVlanState":                   oidVtpVlanEntry + ".2",
		"vtpVlanType":                    oidVtpVlanEntry + ".3",
		"vtpVlanName":                    oidVtpVlanEntry + ".4",
	})}
}

// Layer1 returns the trunk port settings keyed by ifIndex. Ports that are
// actually trunking also get vlanTrunkPortVlansEnabled: the sorted VLANs
// allowed across all four bit vectors.
func (q *VTPQuery) Layer1(ctx context.Context) mib.IndexedData {
	out := make(mib.IndexedData)
	status := mib.Walk(ctx, &q.Base, "vlanTrunkPortDynamicStatus", mib.IfIndex, mib.Int)
	mib.Store(out, "vlanTrunkPortDynamicStatus", status)
	for _, attr := range []string{"vlanTrunkPortDynamicState", "vlanTrunkPortNativeVlan", "vlanTrunkPortEncapsulationType"} {
		mib.Store(out, attr, mib.Walk(ctx, &q.Base, attr, mib.IfIndex, mib.Int))
	}

	enabled := make(map[int][]int)
	for _, block := range trunkBlocks {
		for ifIndex, vlans := range mib.Walk(ctx, &q.Base, block.attr, mib.IfIndex, mib.VLANList(block.offset)) {
			if status[ifIndex] != trunking {
				continue
			}
			enabled[ifIndex] = append(enabled[ifIndex], vlans...)
		}
	}
	for ifIndex, vlans := range enabled {
		sort.Ints(vlans)
		out.Set(ifIndex, "vlanTrunkPortVlansEnabled", vlans)
	}
	return out
}

// Layer2 returns the VLAN table keyed by VLAN number. The table is indexed
// by managementDomainIndex.vlan.
func (q *VTPQuery) Layer2(ctx context.Context) mib.IndexedData {
	out := make(mib.IndexedData)
	mib.Store(out, "vtpVlanName", mib.Walk(ctx, &q.Base, "vtpVlanName", vlanKey, mib.String))
	mib.Store(out, "vtpVlanType", mib.Walk(ctx, &q.Base, "vtpVlanType", vlanKey, mib.Int))
	mib.Store(out, "vtpVlanState", mib.Walk(ctx, &q.Base, "vtpVlanState", vlanKey, mib.Int))
	return out
}

func vlanKey(key string) (int, error) {
	return oid.Node(key, -1)
}
