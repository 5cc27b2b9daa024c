package juniper

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-netmap/internal/mib"
	"go-netmap/internal/snmp/snmptest"
)

// exFixture is an EX switch with ifIndex 501..548 on bridge ports 1..48 and
// two VLANs whose internal ids differ from their tags.
func exFixture() *snmptest.Session {
	s := snmptest.New().
		Set(mib.OIDDot1dBasePortIfIndex+".1", 501).
		Set(oidJnxExVlanEntry+".5.2", 100).
		Set(oidJnxExVlanEntry+".5.3", 200).
		Set(oidJnxExVlanEntry+".2.2", "servers").
		Set(oidJnxExVlanEntry+".2.3", "storage").
		Set(oidJnxExVlanEntry+".2.9", "orphan")
	for i := 501; i <= 548; i++ {
		s.Set(mib.OIDIfIndex+"."+strconv.Itoa(i), i)
	}
	return s
}

func TestVLANLayer1(t *testing.T) {
	s := exFixture().
		Set(oidJnxExVlanPortAccessMode+".2.5", 2).
		Set(oidJnxExVlanPortAccessMode+".3.5", 1).
		Set(oidJnxExVlanPortAccessMode+".3.7", 1).
		Set(oidJnxExVlanPortAccessMode+".9.8", 1).
		Set(oidJnxExVlanPortAccessMode+".2.99", 1)

	q := NewVLANQuery(mib.NewDevice(s, nil)).(*VLANQuery)
	require.True(t, q.Supported(context.Background()))
	probes := s.Calls(oidJnxExVlanEntry + ".5")

	got := q.Layer1(context.Background())
	assert.Equal(t, mib.IndexedData{
		505: {"jnxExVlanPortAccessMode": 2, "jnxExVlanMembership": []int{100, 200}},
		507: {"jnxExVlanPortAccessMode": 1, "jnxExVlanMembership": []int{200}},
	}, got)
	assert.Equal(t, got, q.Layer1(context.Background()), "idempotent")
	assert.Equal(t, probes+1, s.Calls(oidJnxExVlanEntry+".5"), "VLAN map is built once")
	assert.Equal(t, 2, got[505]["jnxExVlanPortAccessMode"], "trunk on any VLAN")
}

func TestVLANLayer2(t *testing.T) {
	q := NewVLANQuery(mib.NewDevice(exFixture(), nil)).(*VLANQuery)
	assert.Equal(t, mib.IndexedData{
		100: {"jnxExVlanName": "servers", "jnxExVlanTag": 100},
		200: {"jnxExVlanName": "storage", "jnxExVlanTag": 200},
	}, q.Layer2(context.Background()))
}

func TestVLANMapSharedWithDevice(t *testing.T) {
	d := mib.NewDevice(exFixture(), nil)
	q := NewVLANQuery(d).(*VLANQuery)
	q.Layer2(context.Background())
	assert.Equal(t, map[int]int{2: 100, 3: 200}, d.JuniperVLANs(context.Background()))
}

func TestVLANUnsupported(t *testing.T) {
	q := NewVLANQuery(mib.NewDevice(snmptest.New(), nil)).(*VLANQuery)
	assert.False(t, q.Supported(context.Background()))
	assert.Empty(t, q.Layer1(context.Background()))
	assert.Empty(t, q.Layer2(context.Background()))
	assert.Equal(t, "1.3.6.1.4.1.2636.3.40.1.5.1.5.1.5", q.OIDs()["jnxExVlanTag"])
}
