// Package decode turns raw SNMP values and OID suffixes into the typed values
// stored in a device document. Every function either returns a value that is
// exact for its input or an error wrapping ErrMalformed.
package decode

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spf13/cast"
)

// ErrMalformed marks a value that cannot be decoded for its column.
var ErrMalformed = errors.New("malformed value")

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

// Int converts any SNMP integer type to int.
func Int(v interface{}) (int, error) {
	switch v.(type) {
	case nil, []byte, string:
		return 0, malformed("%T is not an integer", v)
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, malformed("%v", err)
	}
	return n, nil
}

// Uint64 converts counters, including Counter64, without losing range.
func Uint64(v interface{}) (uint64, error) {
	switch n := v.(type) {
	case nil, []byte, string:
		return 0, malformed("%T is not an integer", v)
	case uint64:
		return n, nil
	}
	n, err := cast.ToUint64E(v)
	if err != nil {
		return 0, malformed("%v", err)
	}
	return n, nil
}

// Bytes returns the octets of an OctetString value.
func Bytes(v interface{}) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	}
	return nil, malformed("%T is not an octet string", v)
}

// String cleans an OctetString for display: invalid UTF-8 and control
// characters are dropped and surrounding space is trimmed. Integers are
// formatted in decimal.
func String(v interface{}) (string, error) {
	switch s := v.(type) {
	case []byte:
		return clean(s), nil
	case string:
		return clean([]byte(s)), nil
	case nil:
		return "", malformed("nil value")
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return "", malformed("%T is not a string", v)
	}
	return strconv.FormatInt(n, 10), nil
}

func clean(b []byte) string {
	var sb strings.Builder
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		b = b[size:]
		if r == utf8.RuneError && size <= 1 {
			continue
		}
		if unicode.IsPrint(r) || r == ' ' {
			sb.WriteRune(r)
		}
	}
	return strings.TrimSpace(sb.String())
}

// MAC decodes a 6 octet physical address to 12 lowercase hex digits.
// Textual forms ("00:16:c2:9c:15:50", "0x0016c29c1550", "0016.c29c.1550")
// are accepted as well, since some agents return them.
func MAC(v interface{}) (string, error) {
	b, err := Bytes(v)
	if err != nil {
		return "", err
	}
	if len(b) == 6 {
		return hex.EncodeToString(b), nil
	}

	s := strings.ToLower(strings.TrimSpace(string(b)))
	s = strings.TrimPrefix(s, "0x")
	s = strings.NewReplacer(":", "", "-", "", ".", "", " ", "").Replace(s)
	if len(s) != 12 {
		return "", malformed("%d octets for a MAC address", len(b))
	}
	if _, err := hex.DecodeString(s); err != nil {
		return "", malformed("MAC address %q", string(b))
	}
	return s, nil
}

// MACFromNodes decodes a MAC address carried as six decimal OID nodes.
func MACFromNodes(nodes []int) (string, error) {
	if len(nodes) != 6 {
		return "", malformed("%d nodes for a MAC address", len(nodes))
	}
	var sb strings.Builder
	for _, n := range nodes {
		if n < 0 || n > 255 {
			return "", malformed("octet %d out of range", n)
		}
		fmt.Fprintf(&sb, "%02x", n)
	}
	return sb.String(), nil
}

// IPv4 decodes an IpAddress value. gosnmp hands these over as dotted
// strings; raw four octet strings are accepted too.
func IPv4(v interface{}) (string, error) {
	switch a := v.(type) {
	case string:
		nodes := strings.Split(a, ".")
		if len(nodes) != 4 {
			return "", malformed("IPv4 address %q", a)
		}
		octets := make([]int, 4)
		for i, n := range nodes {
			o, err := strconv.Atoi(n)
			if err != nil {
				return "", malformed("IPv4 address %q", a)
			}
			octets[i] = o
		}
		return IPv4FromNodes(octets)
	case []byte:
		if len(a) != 4 {
			return "", malformed("%d octets for an IPv4 address", len(a))
		}
		return fmt.Sprintf("%d.%d.%d.%d", a[0], a[1], a[2], a[3]), nil
	}
	return "", malformed("%T is not an IPv4 address", v)
}

// IPv4FromNodes decodes four decimal OID nodes.
func IPv4FromNodes(nodes []int) (string, error) {
	if len(nodes) != 4 {
		return "", malformed("%d nodes for an IPv4 address", len(nodes))
	}
	parts := make([]string, 4)
	for i, n := range nodes {
		if n < 0 || n > 255 {
			return "", malformed("octet %d out of range", n)
		}
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, "."), nil
}

// IPv6FromNodes rebuilds an IPv6 address from sixteen decimal OID nodes as
// eight uncompressed, colon separated groups.
func IPv6FromNodes(nodes []int) (string, error) {
	if len(nodes) != 16 {
		return "", malformed("%d nodes for an IPv6 address", len(nodes))
	}
	b := make([]byte, 16)
	for i, n := range nodes {
		if n < 0 || n > 255 {
			return "", malformed("octet %d out of range", n)
		}
		b[i] = byte(n)
	}
	return ipv6(b), nil
}

func ipv6(b []byte) string {
	groups := make([]string, 8)
	for i := range groups {
		groups[i] = hex.EncodeToString(b[2*i : 2*i+2])
	}
	return strings.Join(groups, ":")
}
