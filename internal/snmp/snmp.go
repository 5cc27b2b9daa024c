// Package snmp is the session layer every MIB query goes through: one GET or
// WALK against one device for one OID.
package snmp

import (
	"context"
	"strings"

	"github.com/gosnmp/gosnmp"
)

// Results maps an OID key to the PDU returned for it. Keys are the trailing
// index nodes after the queried OID unless the query asked for FullOID.
type Results map[string]gosnmp.SnmpPDU

// Session is the device-facing primitive consumed by the MIB adapters.
//
// Walk and Get return transport errors. SafeWalk never does: it returns
// whatever was collected before the failure, possibly nothing.
type Session interface {
	Exists(ctx context.Context, oid string, opts ...Option) bool
	Get(ctx context.Context, oid string, opts ...Option) (Results, error)
	Walk(ctx context.Context, oid string, opts ...Option) (Results, error)
	SafeWalk(ctx context.Context, oid string, opts ...Option) Results
}

// Query holds the per-call options.
type Query struct {
	// FullOID keeps the whole OID as the result key.
	FullOID bool
	// Context is the vendor SNMP context (a VLAN on Cisco). Empty means default.
	Context string
}

// Option modifies a Query.
type Option func(*Query)

// FullOID returns results keyed by the complete OID instead of the index.
// Needed whenever the index encodes more than one value.
func FullOID() Option {
	return func(q *Query) { q.FullOID = true }
}

// Context scopes the query to a vendor SNMP context.
func Context(name string) Option {
	return func(q *Query) { q.Context = name }
}

// Apply folds opts into a Query.
func Apply(opts ...Option) Query {
	var q Query
	for _, opt := range opts {
		opt(&q)
	}
	return q
}

// Key computes the result key for a returned PDU name.
func (q Query) Key(queried, name string) string {
	name = strings.TrimPrefix(name, ".")
	if q.FullOID {
		return name
	}
	queried = strings.TrimPrefix(queried, ".")
	if name == queried {
		// a scalar GET: keep the last node
		if i := strings.LastIndexByte(name, '.'); i >= 0 {
			return name[i+1:]
		}
		return name
	}
	return strings.TrimPrefix(name, queried+".")
}

// Empty reports whether a PDU carries no data for its OID.
func Empty(pdu gosnmp.SnmpPDU) bool {
	switch pdu.Type {
	case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView, gosnmp.Null:
		return true
	}
	return false
}
