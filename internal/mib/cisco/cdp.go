package cisco

import (
	"context"
	"sort"

	"go-netmap/internal/mib"
	"go-netmap/internal/oid"
)

const oidCdpCacheEntry = "1.3.6.1.4.1.9.9.23.1.2.1.1"

// CDPQuery reads the neighbor cache of CISCO-CDP-MIB.
type CDPQuery struct {
	mib.Base
}

// CDPKind registers CISCO-CDP-MIB.
func CDPKind() mib.Kind {
	return mib.Kind{Name: "CISCO-CDP-MIB", Tags: []mib.Tag{mib.TagLayer1}, New: NewCDPQuery}
}

// NewCDPQuery binds CISCO-CDP-MIB to d.
func NewCDPQuery(d *mib.Device) mib.Query {
	return &CDPQuery{Base: mib.NewBase(d, "CISCO-CDP-MIB", oidCdpCacheEntry+".6", []mib.Tag{mib.TagLayer1}, map[string]string{
		"cdpCacheAddress":    oidCdpCacheEntry + ".4",
		"cdpCacheVersion":    oidCdpCacheEntry + ".5",
		"cdpCacheDeviceId":   oidCdpCacheEntry + ".6",
		"cdpCacheDevicePort": oidCdpCacheEntry + ".7",
		"cdpCachePlatform":   oidCdpCacheEntry + ".8",
	})}
}

// Layer1 returns the neighbor seen on each interface, keyed by ifIndex. The
// cache is indexed by ifIndex.deviceIndex; with several neighbors on one
// interface the lowest device index wins.
func (q *CDPQuery) Layer1(ctx context.Context) mib.IndexedData {
	out := make(mib.IndexedData)
	rows := q.rows(ctx)
	if len(rows) == 0 {
		return out
	}
	for _, attr := range []string{"cdpCacheVersion", "cdpCacheDeviceId", "cdpCacheDevicePort", "cdpCachePlatform"} {
		setRows(out, attr, rows, mib.Walk(ctx, &q.Base, attr, mib.RawKey, mib.String))
	}
	// cdpCacheAddress is only decoded for the ip(1) address type, which
	// carries the four octets.
	setRows(out, "cdpCacheAddress", rows, mib.Walk(ctx, &q.Base, "cdpCacheAddress", mib.RawKey, mib.IPv4))
	return out
}

func (q *CDPQuery) rows(ctx context.Context) map[int]string {
	type row struct {
		key           string
		ifIndex, slot int
	}
	var all []row
	for key := range mib.Walk(ctx, &q.Base, "cdpCacheDeviceId", mib.RawKey, mib.Octets) {
		nodes, err := oid.Nodes(key)
		if err != nil || len(nodes) != 2 {
			continue
		}
		all = append(all, row{key: key, ifIndex: nodes[0], slot: nodes[1]})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].slot < all[j].slot })

	rows := make(map[int]string)
	for _, r := range all {
		if _, taken := rows[r.ifIndex]; !taken {
			rows[r.ifIndex] = r.key
		}
	}
	return rows
}

// setRows copies one row per ifIndex out of a column keyed by raw index.
func setRows[V any](out mib.IndexedData, attr string, rows map[int]string, column map[string]V) {
	for ifIndex, key := range rows {
		if v, ok := column[key]; ok {
			out.Set(ifIndex, attr, v)
		}
	}
}
