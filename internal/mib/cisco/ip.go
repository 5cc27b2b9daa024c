package cisco

import (
	"context"

	"go-netmap/internal/decode"
	"go-netmap/internal/mib"
	"go-netmap/internal/oid"
	"go-netmap/internal/snmp"
)

const oidCInetNetToMediaPhysAddress = "1.3.6.1.4.1.9.10.86.1.1.3.1.3"

// IETFIPQuery reads the IPv6 neighbor table of CISCO-IETF-IP-MIB, the draft
// of IP-MIB ipNetToPhysicalTable shipped with older IOS.
type IETFIPQuery struct {
	mib.Base
}

// IETFIPKind registers CISCO-IETF-IP-MIB.
func IETFIPKind() mib.Kind {
	return mib.Kind{Name: "CISCO-IETF-IP-MIB", Tags: []mib.Tag{mib.TagLayer3}, New: NewIETFIPQuery}
}

// NewIETFIPQuery binds CISCO-IETF-IP-MIB to d.
func NewIETFIPQuery(d *mib.Device) mib.Query {
	return &IETFIPQuery{Base: mib.NewBase(d, "CISCO-IETF-IP-MIB", oidCInetNetToMediaPhysAddress, []mib.Tag{mib.TagLayer3}, map[string]string{
		"cInetNetToMediaPhysAddress": oidCInetNetToMediaPhysAddress,
	})}
}

// Layer3 returns IPv6 -> MAC as cInetNetToMediaPhysAddress. The address is
// the sixteen trailing nodes of the instance OID; rows of other address
// types are dropped.
func (q *IETFIPQuery) Layer3(ctx context.Context) mib.KeyedData {
	out := make(mib.KeyedData)
	mib.StoreKeyed(out, "cInetNetToMediaPhysAddress",
		mib.Walk(ctx, &q.Base, "cInetNetToMediaPhysAddress", ipv6Key, mib.MAC, snmp.FullOID()))
	return out
}

// ipv6Key decodes ifIndex.2.16.<16 octets> below the column.
func ipv6Key(key string) (string, error) {
	rest, ok := oid.Trim(key, oidCInetNetToMediaPhysAddress)
	if !ok {
		return "", oid.ErrBadOID
	}
	nodes, err := oid.Nodes(rest)
	if err != nil {
		return "", err
	}
	if len(nodes) != 19 || nodes[1] != 2 || nodes[2] != 16 {
		return "", decode.ErrMalformed
	}
	return decode.IPv6FromNodes(nodes[3:])
}
