package generic

import (
	"context"
	"fmt"

	"go-netmap/internal/decode"
	"go-netmap/internal/mib"
	"go-netmap/internal/oid"
	"go-netmap/internal/snmp"
)

const (
	oidIPNetToMediaPhysAddress    = "1.3.6.1.2.1.4.22.1.2"
	oidIPNetToPhysicalPhysAddress = "1.3.6.1.2.1.4.35.1.4"
	oidIPAdEntNetMask             = "1.3.6.1.2.1.4.20.1.3"
	oidIPv6NetToMediaPhysAddress  = "1.3.6.1.2.1.55.1.12.1.2"
)

// IPQuery reads the ARP and neighbor tables of IP-MIB.
type IPQuery struct {
	mib.Base
}

// IPKind registers IP-MIB.
func IPKind() mib.Kind {
	return mib.Kind{Name: "IP-MIB", Tags: []mib.Tag{mib.TagLayer3}, New: NewIPQuery}
}

// NewIPQuery binds IP-MIB to d.
func NewIPQuery(d *mib.Device) mib.Query {
	return &IPQuery{Base: mib.NewBase(d, "IP-MIB", oidIPNetToMediaPhysAddress, []mib.Tag{mib.TagLayer3}, map[string]string{
		"ipNetToMediaTable":          oidIPNetToMediaPhysAddress,
		"ipNetToPhysicalPhysAddress": oidIPNetToPhysicalPhysAddress,
		"ipAdEntNetMask":             oidIPAdEntNetMask,
	})}
}

// Supported accepts agents serving either the RFC 1213 ARP table or only
// the RFC 4293 ipNetToPhysicalTable.
func (q *IPQuery) Supported(ctx context.Context) bool {
	return q.Device.Exists(ctx, oidIPNetToMediaPhysAddress) || q.Device.Exists(ctx, oidIPNetToPhysicalPhysAddress)
}

// Layer3 returns IPv4 -> MAC as ipNetToMediaTable, IPv4 and IPv6 -> MAC as
// ipNetToPhysicalPhysAddress and local address -> mask as ipAdEntNetMask.
func (q *IPQuery) Layer3(ctx context.Context) mib.KeyedData {
	out := make(mib.KeyedData)
	mib.StoreKeyed(out, "ipNetToMediaTable", mib.Walk(ctx, &q.Base, "ipNetToMediaTable", ipv4Key, mib.MAC))
	mib.StoreKeyed(out, "ipNetToPhysicalPhysAddress",
		mib.Walk(ctx, &q.Base, "ipNetToPhysicalPhysAddress", inetKey(oidIPNetToPhysicalPhysAddress), mib.MAC, snmp.FullOID()))
	mib.StoreKeyed(out, "ipAdEntNetMask", mib.Walk(ctx, &q.Base, "ipAdEntNetMask", ipv4Key, mib.IPv4))
	return out
}

// IPv6Query reads the neighbor table of the obsolete IPV6-MIB still served
// by older agents.
type IPv6Query struct {
	mib.Base
}

// IPv6Kind registers IPV6-MIB.
func IPv6Kind() mib.Kind {
	return mib.Kind{Name: "IPV6-MIB", Tags: []mib.Tag{mib.TagLayer3}, New: NewIPv6Query}
}

// NewIPv6Query binds IPV6-MIB to d.
func NewIPv6Query(d *mib.Device) mib.Query {
	return &IPv6Query{Base: mib.NewBase(d, "IPV6-MIB", oidIPv6NetToMediaPhysAddress, []mib.Tag{mib.TagLayer3}, map[string]string{
		"ipv6NetToMediaPhysAddress": oidIPv6NetToMediaPhysAddress,
	})}
}

// Layer3 returns IPv6 -> MAC as ipv6NetToMediaPhysAddress.
func (q *IPv6Query) Layer3(ctx context.Context) mib.KeyedData {
	out := make(mib.KeyedData)
	mib.StoreKeyed(out, "ipv6NetToMediaPhysAddress",
		mib.Walk(ctx, &q.Base, "ipv6NetToMediaPhysAddress", ipv6Key, mib.MAC, snmp.FullOID()))
	return out
}

// ipv4Key decodes an IPv4 address from the four trailing index nodes.
func ipv4Key(key string) (string, error) {
	nodes, err := oid.Last(key, 4)
	if err != nil {
		return "", err
	}
	return decode.IPv4FromNodes(nodes)
}

// ipv6Key decodes an IPv6 address from the sixteen trailing nodes.
func ipv6Key(key string) (string, error) {
	nodes, err := oid.Last(key, 16)
	if err != nil {
		return "", err
	}
	return decode.IPv6FromNodes(nodes)
}

// inetKey decodes the InetAddressType.InetAddress suffix of tables indexed
// by ifIndex.type.length.address, given as a full OID below column.
func inetKey(column string) mib.KeyParser[string] {
	return func(key string) (string, error) {
		rest, ok := oid.Trim(key, column)
		if !ok {
			return "", fmt.Errorf("%w: %q is not below %s", oid.ErrBadOID, key, column)
		}
		nodes, err := oid.Nodes(rest)
		if err != nil {
			return "", err
		}
		// ifIndex, type, length, address
		if len(nodes) < 3 || len(nodes) != 3+nodes[2] {
			return "", fmt.Errorf("%w: %q is not an InetAddress index", oid.ErrBadOID, rest)
		}
		switch addr := nodes[3:]; nodes[1] {
		case 1:
			return decode.IPv4FromNodes(addr)
		case 2:
			return decode.IPv6FromNodes(addr)
		}
		return "", fmt.Errorf("%w: InetAddressType %d", decode.ErrMalformed, nodes[1])
	}
}
