package generic

import (
	"context"
	"sort"

	"go-netmap/internal/mib"
	"go-netmap/internal/oid"
)

const (
	oidIfEntry      = "1.3.6.1.2.1.2.2.1"
	oidIfXEntry     = "1.3.6.1.2.1.31.1.1.1"
	oidIfStackEntry = "1.3.6.1.2.1.31.1.2.1"
)

// IfQuery reads ifTable, ifXTable and ifStackTable of IF-MIB.
type IfQuery struct {
	mib.Base
}

// IfKind registers IF-MIB.
func IfKind() mib.Kind {
	return mib.Kind{Name: "IF-MIB", Tags: []mib.Tag{mib.TagLayer1}, New: NewIfQuery}
}

// NewIfQuery binds IF-MIB to d.
func NewIfQuery(d *mib.Device) mib.Query {
	return &IfQuery{Base: mib.NewBase(d, "IF-MIB", mib.OIDIfIndex, []mib.Tag{mib.TagLayer1}, map[string]string{
		"ifDescr":            oidIfEntry + ".2",
		"ifType":             oidIfEntry + ".3",
		"ifMtu":              oidIfEntry + ".4",
		"ifSpeed":            oidIfEntry + ".5",
		"ifPhysAddress":      oidIfEntry + ".6",
		"ifAdminStatus":      oidIfEntry + ".7",
		"ifOperStatus":       oidIfEntry + ".8",
		"ifLastChange":       oidIfEntry + ".9",
		"ifInOctets":         oidIfEntry + ".10",
		"ifInDiscards":       oidIfEntry + ".13",
		"ifInErrors":         oidIfEntry + ".14",
		"ifOutOctets":        oidIfEntry + ".16",
		"ifOutDiscards":      oidIfEntry + ".19",
		"ifOutErrors":        oidIfEntry + ".20",
		"ifName":             oidIfXEntry + ".1",
		"ifInMulticastPkts":  oidIfXEntry + ".2",
		"ifInBroadcastPkts":  oidIfXEntry + ".3",
		"ifOutMulticastPkts": oidIfXEntry + ".4",
		"ifOutBroadcastPkts": oidIfXEntry + ".5",
		"ifHighSpeed":        oidIfXEntry + ".15",
		"ifConnectorPresent": oidIfXEntry + ".17",
		"ifAlias":            oidIfXEntry + ".18",
		"ifStackStatus":      oidIfStackEntry + ".3",
	})}
}

// Layer1 returns the interface table keyed by ifIndex.
func (q *IfQuery) Layer1(ctx context.Context) mib.IndexedData {
	out := make(mib.IndexedData)
	for _, attr := range []string{"ifDescr", "ifName", "ifAlias"} {
		mib.Store(out, attr, mib.Walk(ctx, &q.Base, attr, mib.IfIndex, mib.String))
	}
	for _, attr := range []string{"ifType", "ifMtu", "ifSpeed", "ifAdminStatus", "ifOperStatus", "ifLastChange", "ifHighSpeed"} {
		mib.Store(out, attr, mib.Walk(ctx, &q.Base, attr, mib.IfIndex, mib.Int))
	}
	for _, attr := range []string{
		"ifInOctets", "ifOutOctets",
		"ifInDiscards", "ifOutDiscards",
		"ifInErrors", "ifOutErrors",
		"ifInMulticastPkts", "ifOutMulticastPkts",
		"ifInBroadcastPkts", "ifOutBroadcastPkts",
	} {
		mib.Store(out, attr, mib.Walk(ctx, &q.Base, attr, mib.IfIndex, mib.Counter))
	}
	mib.Store(out, "ifPhysAddress", mib.Walk(ctx, &q.Base, "ifPhysAddress", mib.IfIndex, mib.MAC))
	mib.Store(out, "ifConnectorPresent", mib.Walk(ctx, &q.Base, "ifConnectorPresent", mib.IfIndex, mib.Truth))
	mib.Store(out, "ifStackLowerLayer", q.lowerLayers(ctx))
	return out
}

// lowerLayers maps each higher layer ifIndex to its lower layer ifIndexes,
// e.g. a port channel to its members. Rows involving ifIndex 0 mark the top
// or bottom of a stack and are skipped.
func (q *IfQuery) lowerLayers(ctx context.Context) map[int][]int {
	stack := mib.Walk(ctx, &q.Base, "ifStackStatus", stackKey, mib.Int)
	out := make(map[int][]int)
	for pair := range stack {
		if pair[0] == 0 || pair[1] == 0 {
			continue
		}
		out[pair[0]] = append(out[pair[0]], pair[1])
	}
	for _, lower := range out {
		sort.Ints(lower)
	}
	return out
}

// stackKey parses the higher.lower index of ifStackTable.
func stackKey(key string) ([2]int, error) {
	nodes, err := oid.Last(key, 2)
	if err != nil {
		return [2]int{}, err
	}
	return [2]int{nodes[0], nodes[1]}, nil
}

// IfHCQuery reads the 64 bit counters of ifXTable. It is a separate adapter
// because many agents implement ifXTable without them.
type IfHCQuery struct {
	mib.Base
}

// IfHCKind registers the IF-MIB high capacity counters.
func IfHCKind() mib.Kind {
	return mib.Kind{Name: "IF-MIB-HC", Tags: []mib.Tag{mib.TagLayer1}, New: NewIfHCQuery}
}

// NewIfHCQuery binds the IF-MIB high capacity counters to d.
func NewIfHCQuery(d *mib.Device) mib.Query {
	return &IfHCQuery{Base: mib.NewBase(d, "IF-MIB-HC", oidIfXEntry+".6", []mib.Tag{mib.TagLayer1}, map[string]string{
		"ifHCInOctets":         oidIfXEntry + ".6",
		"ifHCInUcastPkts":      oidIfXEntry + ".7",
		"ifHCInMulticastPkts":  oidIfXEntry + ".8",
		"ifHCInBroadcastPkts":  oidIfXEntry + ".9",
		"ifHCOutOctets":        oidIfXEntry + ".10",
		"ifHCOutUcastPkts":     oidIfXEntry + ".11",
		"ifHCOutMulticastPkts": oidIfXEntry + ".12",
		"ifHCOutBroadcastPkts": oidIfXEntry + ".13",
	})}
}

// Layer1 returns the counters keyed by ifIndex.
func (q *IfHCQuery) Layer1(ctx context.Context) mib.IndexedData {
	out := make(mib.IndexedData)
	for attr := range q.OIDs() {
		mib.Store(out, attr, mib.Walk(ctx, &q.Base, attr, mib.IfIndex, mib.Counter))
	}
	return out
}

// EtherLikeQuery reads the duplex status of EtherLike-MIB.
type EtherLikeQuery struct {
	mib.Base
}

// EtherLikeKind registers EtherLike-MIB.
func EtherLikeKind() mib.Kind {
	return mib.Kind{Name: "EtherLike-MIB", Tags: []mib.Tag{mib.TagLayer1}, New: NewEtherLikeQuery}
}

const oidDot3StatsDuplexStatus = "1.3.6.1.2.1.10.7.2.1.19"

// NewEtherLikeQuery binds EtherLike-MIB to d.
func NewEtherLikeQuery(d *mib.Device) mib.Query {
	return &EtherLikeQuery{Base: mib.NewBase(d, "EtherLike-MIB", oidDot3StatsDuplexStatus, []mib.Tag{mib.TagLayer1}, map[string]string{
		"dot3StatsDuplexStatus": oidDot3StatsDuplexStatus,
	})}
}

// Layer1 returns dot3StatsDuplexStatus keyed by ifIndex: 1 unknown, 2 half,
// 3 full.
func (q *EtherLikeQuery) Layer1(ctx context.Context) mib.IndexedData {
	out := make(mib.IndexedData)
	mib.Store(out, "dot3StatsDuplexStatus", mib.Walk(ctx, &q.Base, "dot3StatsDuplexStatus", mib.IfIndex, mib.Int))
	return out
}
