package mib

import (
	"context"
	"fmt"

	"github.com/gosnmp/gosnmp"
	"go.uber.org/zap"

	"go-netmap/internal/decode"
	"go-netmap/internal/oid"
	"go-netmap/internal/snmp"
)

// KeyParser turns a result key (the OID index) into a typed key.
type KeyParser[K comparable] func(key string) (K, error)

// Decoder turns one PDU into a typed value.
type Decoder[V any] func(pdu gosnmp.SnmpPDU) (V, error)

// Walk reads the column bound to attr with a strict walk. A transport error
// yields an empty map. Entries whose key or value fail to decode are dropped.
func Walk[K comparable, V any](ctx context.Context, b *Base, attr string, key KeyParser[K], value Decoder[V], opts ...snmp.Option) map[K]V {
	return decodeColumn(b, attr, b.Device.Walk(ctx, b.OID(attr), opts...), key, value)
}

// SafeWalk is Walk over a fail-safe walk: partial results survive a
// transport failure. Used for forwarding tables and per-context queries.
func SafeWalk[K comparable, V any](ctx context.Context, b *Base, attr string, key KeyParser[K], value Decoder[V], opts ...snmp.Option) map[K]V {
	return decodeColumn(b, attr, b.Device.SafeWalk(ctx, b.OID(attr), opts...), key, value)
}

func decodeColumn[K comparable, V any](b *Base, attr string, results snmp.Results, key KeyParser[K], value Decoder[V]) map[K]V {
	out := make(map[K]V, len(results))
	for k, pdu := range results {
		index, err := key(k)
		if err != nil {
			b.Device.skip(b.name, attr, k, err)
			continue
		}
		v, err := value(pdu)
		if err != nil {
			b.Device.skip(b.name, attr, k, err)
			continue
		}
		out[index] = v
	}
	return out
}

// IfIndex parses a single node index.
func IfIndex(key string) (int, error) {
	return oid.Index(key)
}

// Index parses any other single node index: a VLAN tag, a bridge port.
func Index(key string) (int, error) {
	return oid.Index(key)
}

// RawKey keeps the index as is.
func RawKey(key string) (string, error) {
	return key, nil
}

// Int decodes INTEGER, Gauge32, TimeTicks and friends.
func Int(pdu gosnmp.SnmpPDU) (int, error) {
	return decode.Int(pdu.Value)
}

// Counter decodes Counter32 and Counter64.
func Counter(pdu gosnmp.SnmpPDU) (uint64, error) {
	return decode.Uint64(pdu.Value)
}

// String decodes a DisplayString.
func String(pdu gosnmp.SnmpPDU) (string, error) {
	return decode.String(pdu.Value)
}

// MAC decodes a PhysAddress / MacAddress.
func MAC(pdu gosnmp.SnmpPDU) (string, error) {
	return decode.MAC(pdu.Value)
}

// Octets returns the raw octets.
func Octets(pdu gosnmp.SnmpPDU) ([]byte, error) {
	return decode.Bytes(pdu.Value)
}

// IPv4 decodes an IpAddress.
func IPv4(pdu gosnmp.SnmpPDU) (string, error) {
	return decode.IPv4(pdu.Value)
}

// ObjectID decodes an OBJECT IDENTIFIER value without its leading dot.
func ObjectID(pdu gosnmp.SnmpPDU) (string, error) {
	s, ok := pdu.Value.(string)
	if !ok || pdu.Type != gosnmp.ObjectIdentifier {
		return "", fmt.Errorf("%w: %v is not an object identifier", decode.ErrMalformed, pdu.Type)
	}
	return oid.Normalize(s), nil
}

// PortList decodes a PortList into 1-based bridge ports.
func PortList(pdu gosnmp.SnmpPDU) ([]int, error) {
	return decode.Ports(pdu.Value)
}

// VLANList returns a decoder for a VLAN bit vector whose bit 0 is VLAN
// offset.
func VLANList(offset int) Decoder[[]int] {
	return func(pdu gosnmp.SnmpPDU) ([]int, error) {
		return decode.VLANs(pdu.Value, offset)
	}
}

// Capabilities decodes an LLDP capabilities bit map.
func Capabilities(pdu gosnmp.SnmpPDU) ([]string, error) {
	return decode.Capabilities(pdu.Value)
}

// Truth decodes a TruthValue: true(1), false(2).
func Truth(pdu gosnmp.SnmpPDU) (bool, error) {
	n, err := decode.Int(pdu.Value)
	if err != nil {
		return false, err
	}
	switch n {
	case 1:
		return true, nil
	case 2:
		return false, nil
	}
	return false, fmt.Errorf("%w: TruthValue %d", decode.ErrMalformed, n)
}

func (d *Device) skip(mibName, attr, key string, err error) {
	d.logger.Debug("dropping entry",
		zap.String("mib", mibName),
		zap.String("attribute", attr),
		zap.String("index", key),
		zap.Error(err))
}

// Store copies a decoded ifIndex or VLAN keyed column into out under attr.
func Store[V any](out IndexedData, attr string, column map[int]V) {
	for index, v := range column {
		out.Set(index, attr, v)
	}
}

// StoreKeyed copies a decoded column into out under attr.
func StoreKeyed[V any](out KeyedData, attr string, column map[string]V) {
	for key, v := range column {
		out.Set(attr, key, v)
	}
}
