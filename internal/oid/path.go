// Package oid holds OID string helpers and the enum label tables used when
// presenting polled values.
package oid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadOID is returned for OID strings that are not dotted decimals.
var ErrBadOID = errors.New("bad OID")

// EnterprisesPrefix is the root of vendor private MIBs.
const EnterprisesPrefix = "1.3.6.1.4.1"

// Normalize strips the leading dot gosnmp puts on PDU names.
func Normalize(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), ".")
}

// Trim removes prefix and its separator from full. ok is false when full is
// not below prefix.
func Trim(full, prefix string) (string, bool) {
	full, prefix = Normalize(full), Normalize(prefix)
	if !strings.HasPrefix(full, prefix+".") {
		return "", false
	}
	return full[len(prefix)+1:], true
}

// Nodes parses a dotted OID into its numeric nodes.
func Nodes(s string) ([]int, error) {
	s = Normalize(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrBadOID)
	}
	parts := strings.Split(s, ".")
	nodes := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: %q", ErrBadOID, s)
		}
		nodes[i] = n
	}
	return nodes, nil
}

// Last returns the trailing n nodes of s.
func Last(s string, n int) ([]int, error) {
	nodes, err := Nodes(s)
	if err != nil {
		return nil, err
	}
	if len(nodes) < n {
		return nil, fmt.Errorf("%w: %q has fewer than %d nodes", ErrBadOID, s, n)
	}
	return nodes[len(nodes)-n:], nil
}

// Node returns a single node. Negative i counts from the end, -1 being the
// last node.
func Node(s string, i int) (int, error) {
	nodes, err := Nodes(s)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		i += len(nodes)
	}
	if i < 0 || i >= len(nodes) {
		return 0, fmt.Errorf("%w: %q has no node %d", ErrBadOID, s, i)
	}
	return nodes[i], nil
}

// Index parses a single-node index such as an ifIndex.
func Index(s string) (int, error) {
	nodes, err := Nodes(s)
	if err != nil {
		return 0, err
	}
	if len(nodes) != 1 {
		return 0, fmt.Errorf("%w: %q is not a single node index", ErrBadOID, s)
	}
	return nodes[0], nil
}

// Enterprise extracts the IANA enterprise number from a sysObjectID.
func Enterprise(sysObjectID string) (int, error) {
	rest, ok := Trim(sysObjectID, EnterprisesPrefix)
	if !ok {
		return 0, fmt.Errorf("%w: %q is not below enterprises", ErrBadOID, sysObjectID)
	}
	return Node(rest, 0)
}
