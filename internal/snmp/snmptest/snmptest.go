// Package snmptest provides an in-memory snmp.Session for tests.
package snmptest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/gosnmp/gosnmp"

	"go-netmap/internal/snmp"
)

// ErrTimeout is what a failing OID returns unless told otherwise.
var ErrTimeout = errors.New("request timeout (after 1 retries)")

// Session serves fixture PDUs keyed by context and full OID.
type Session struct {
	mu       sync.Mutex
	data     map[string]map[string]gosnmp.SnmpPDU
	failures map[string]error
	panics   map[string]bool
	calls    map[string]int
}

// New returns an empty Session: every OID is absent.
func New() *Session {
	return &Session{
		data:     map[string]map[string]gosnmp.SnmpPDU{"": {}},
		failures: make(map[string]error),
		panics:   make(map[string]bool),
		calls:    make(map[string]int),
	}
}

// Set stores value at oid in the default context.
func (s *Session) Set(oid string, value interface{}) *Session {
	return s.SetIn("", oid, value)
}

// SetIn stores value at oid in the named context.
func (s *Session) SetIn(scope, oid string, value interface{}) *Session {
	return s.SetPDU(scope, oid, pduType(value), value)
}

// SetPDU stores a PDU with an explicit type.
func (s *Session) SetPDU(scope, oid string, typ gosnmp.Asn1BER, value interface{}) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	oid = strings.TrimPrefix(oid, ".")
	if s.data[scope] == nil {
		s.data[scope] = make(map[string]gosnmp.SnmpPDU)
	}
	if str, ok := value.(string); ok && typ == gosnmp.OctetString {
		value = []byte(str)
	}
	s.data[scope][oid] = gosnmp.SnmpPDU{Name: "." + oid, Type: typ, Value: value}
	return s
}

// Column stores one value per index below a table column OID.
func (s *Session) Column(oid string, values map[string]interface{}) *Session {
	for index, value := range values {
		s.Set(oid+"."+index, value)
	}
	return s
}

// Fail makes every query at or below prefix return err.
func (s *Session) Fail(prefix string, err error) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		err = ErrTimeout
	}
	s.failures[strings.TrimPrefix(prefix, ".")] = err
	return s
}

// Panic makes every query at or below prefix panic.
func (s *Session) Panic(prefix string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panics[strings.TrimPrefix(prefix, ".")] = true
	return s
}

// Calls returns how many queries hit oid.
func (s *Session) Calls(oid string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[strings.TrimPrefix(oid, ".")]
}

func (s *Session) check(oid string) error {
	s.calls[oid]++
	for prefix := range s.panics {
		if under(oid, prefix) {
			panic("snmptest: panic requested for " + oid)
		}
	}
	for prefix, err := range s.failures {
		if under(oid, prefix) {
			return err
		}
	}
	return nil
}

// Exists implements snmp.Session.
func (s *Session) Exists(ctx context.Context, oid string, opts ...snmp.Option) bool {
	if results, err := s.Get(ctx, oid, opts...); err == nil && len(results) > 0 {
		return true
	}
	return len(s.SafeWalk(ctx, oid, opts...)) > 0
}

// Get implements snmp.Session.
func (s *Session) Get(ctx context.Context, oid string, opts ...snmp.Option) (snmp.Results, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := snmp.Apply(opts...)
	oid = strings.TrimPrefix(oid, ".")

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(oid); err != nil {
		return nil, err
	}
	results := make(snmp.Results)
	if pdu, ok := s.data[q.Context][oid]; ok {
		results[q.Key(oid, pdu.Name)] = pdu
	}
	return results, nil
}

// Walk implements snmp.Session.
func (s *Session) Walk(ctx context.Context, oid string, opts ...snmp.Option) (snmp.Results, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := snmp.Apply(opts...)
	oid = strings.TrimPrefix(oid, ".")

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(oid); err != nil {
		return nil, err
	}
	results := make(snmp.Results)
	for name, pdu := range s.data[q.Context] {
		if strings.HasPrefix(name, oid+".") {
			results[q.Key(oid, pdu.Name)] = pdu
		}
	}
	return results, nil
}

// SafeWalk implements snmp.Session.
func (s *Session) SafeWalk(ctx context.Context, oid string, opts ...snmp.Option) snmp.Results {
	results, err := s.Walk(ctx, oid, opts...)
	if err != nil {
		return snmp.Results{}
	}
	return results
}

func under(oid, prefix string) bool {
	return oid == prefix || strings.HasPrefix(oid, prefix+".")
}

func pduType(value interface{}) gosnmp.Asn1BER {
	switch value.(type) {
	case string, []byte:
		return gosnmp.OctetString
	case uint, uint32:
		return gosnmp.Gauge32
	case uint64:
		return gosnmp.Counter64
	}
	return gosnmp.Integer
}

var _ snmp.Session = (*Session)(nil)
