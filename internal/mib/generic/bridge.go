package generic

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"go-netmap/internal/decode"
	"go-netmap/internal/mib"
	"go-netmap/internal/oid"
	"go-netmap/internal/snmp"
)

const (
	oidDot1dTpFdbPort = "1.3.6.1.2.1.17.4.3.1.2"
	oidDot1qTpFdbPort = "1.3.6.1.2.1.17.7.1.2.2.1.2"
)

// BridgeQuery reads BRIDGE-MIB: the bridge port of every interface and the
// MAC addresses learned on it. Forwarding tables are keyed by bridge port and
// are resolved to ifIndex through the device's bridge port map.
//
// Cisco keeps one bridge per VLAN, reachable through a per-VLAN SNMP
// context; other vendors expose one bridge whose VLAN aware entries live in
// Q-BRIDGE-MIB dot1qTpFdbPort. A Cisco device without active VTP VLANs is
// read like any other.
type BridgeQuery struct {
	mib.Base
}

// BridgeKind registers BRIDGE-MIB.
func BridgeKind() mib.Kind {
	return mib.Kind{Name: "BRIDGE-MIB", Tags: []mib.Tag{mib.TagLayer1}, New: NewBridgeQuery}
}

// NewBridgeQuery binds BRIDGE-MIB to d.
func NewBridgeQuery(d *mib.Device) mib.Query {
	return &BridgeQuery{Base: mib.NewBase(d, "BRIDGE-MIB", mib.OIDDot1dBasePortIfIndex, []mib.Tag{mib.TagLayer1}, map[string]string{
		"dot1dBasePortIfIndex": mib.OIDDot1dBasePortIfIndex,
		"dot1dTpFdbPort":       oidDot1dTpFdbPort,
		"dot1qTpFdbPort":       oidDot1qTpFdbPort,
	})}
}

// Layer1 returns, per ifIndex, its dot1dBasePort and the learned MACs as
// dot1dTpFdbAddress: VLAN -> sorted MACs. VLAN 0 means the VLAN is unknown.
func (q *BridgeQuery) Layer1(ctx context.Context) mib.IndexedData {
	out := make(mib.IndexedData)
	for port, ifIndex := range q.Device.BasePorts(ctx, "") {
		out.Set(ifIndex, "dot1dBasePort", port)
	}

	var fdb fdbTable
	if q.Device.IsCisco(ctx) && len(q.Device.CiscoVLANs(ctx)) > 0 {
		fdb = q.ciscoFdb(ctx)
	} else {
		fdb = q.fdb(ctx)
	}
	for ifIndex, vlans := range fdb.sorted() {
		out.Set(ifIndex, "dot1dTpFdbAddress", vlans)
	}
	return out
}

// ciscoFdb walks dot1dTpFdbPort once per active VLAN in that VLAN's
// context, resolving ports through the context's own bridge port map.
func (q *BridgeQuery) ciscoFdb(ctx context.Context) fdbTable {
	fdb := make(fdbTable)
	for _, vlan := range q.Device.CiscoVLANs(ctx) {
		if ctx.Err() != nil {
			break
		}
		scope := q.Device.VLANContext(ctx, vlan)
		ports := mib.SafeWalk(ctx, &q.Base, "dot1dTpFdbPort", mib.RawKey, mib.Int, snmp.Context(scope))
		for key, port := range ports {
			mac, err := macKey(key)
			if err != nil {
				q.Device.Logger().Debug("bad forwarding entry", zap.String("context", scope), zap.String("index", key), zap.Error(err))
				continue
			}
			ifIndex, ok := q.Device.IfIndexOf(ctx, scope, port)
			if !ok {
				continue
			}
			fdb.add(ifIndex, vlan, mac)
		}
	}
	return fdb
}

// fdb walks both forwarding tables in the default context. dot1qTpFdbPort
// is indexed by FDB id. Most VLAN aware bridges use the VLAN tag; Juniper
// uses its internal VLAN id, and entries it cannot map to a tag are dropped.
func (q *BridgeQuery) fdb(ctx context.Context) fdbTable {
	var tags map[int]int
	if q.Device.IsJuniper(ctx) {
		tags = q.Device.JuniperVLANs(ctx)
	}

	fdb := make(fdbTable)
	for key, port := range mib.SafeWalk(ctx, &q.Base, "dot1dTpFdbPort", mib.RawKey, mib.Int) {
		mac, err := macKey(key)
		if err != nil {
			continue
		}
		if ifIndex, ok := q.Device.IfIndexOf(ctx, "", port); ok {
			fdb.add(ifIndex, 0, mac)
		}
	}
	for key, port := range mib.SafeWalk(ctx, &q.Base, "dot1qTpFdbPort", mib.RawKey, mib.Int) {
		nodes, err := oid.Nodes(key)
		if err != nil || len(nodes) != 7 {
			continue
		}
		mac, err := decode.MACFromNodes(nodes[1:])
		if err != nil {
			continue
		}
		vlan := nodes[0]
		if tags != nil {
			tag, ok := tags[vlan]
			if !ok {
				continue
			}
			vlan = tag
		}
		if ifIndex, ok := q.Device.IfIndexOf(ctx, "", port); ok {
			fdb.add(ifIndex, vlan, mac)
		}
	}
	return fdb
}

// macKey decodes a MAC carried as the six trailing index nodes.
func macKey(key string) (string, error) {
	nodes, err := oid.Last(key, 6)
	if err != nil {
		return "", err
	}
	return decode.MACFromNodes(nodes)
}

// fdbTable is ifIndex -> VLAN -> set of MACs.
type fdbTable map[int]map[int]map[string]bool

func (t fdbTable) add(ifIndex, vlan int, mac string) {
	if t[ifIndex] == nil {
		t[ifIndex] = make(map[int]map[string]bool)
	}
	if t[ifIndex][vlan] == nil {
		t[ifIndex][vlan] = make(map[string]bool)
	}
	t[ifIndex][vlan][mac] = true
}

func (t fdbTable) sorted() map[int]map[int][]string {
	out := make(map[int]map[int][]string, len(t))
	for ifIndex, vlans := range t {
		out[ifIndex] = make(map[int][]string, len(vlans))
		for vlan, macs := range vlans {
			list := make([]string, 0, len(macs))
			for mac := range macs {
				list = append(list, mac)
			}
			sort.Strings(list)
			out[ifIndex][vlan] = list
		}
	}
	return out
}
