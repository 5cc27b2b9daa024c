package cisco

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-netmap/internal/mib"
	"go-netmap/internal/snmp/snmptest"
)

var mac = []byte{0x00, 0x16, 0xc2, 0x9c, 0x15, 0x50}

func kinds() []mib.Kind {
	return []mib.Kind{
		C2900Kind(),
		CDPKind(),
		IETFIPKind(),
		StackKind(),
		VLANIfTableKind(),
		VLANMembershipKind(),
		VTPKind(),
		ESSwitchKind(),
	}
}

func TestUnsupportedDeviceYieldsEmptyLayers(t *testing.T) {
	ctx := context.Background()
	for _, kind := range kinds() {
		t.Run(kind.Name, func(t *testing.T) {
			q := kind.New(mib.NewDevice(snmptest.New(), nil))
			assert.False(t, q.Supported(ctx))
			assert.NotEmpty(t, q.OIDs())
			if l, ok := q.(mib.Layer1Query); ok {
				assert.Empty(t, l.Layer1(ctx))
			}
			if l, ok := q.(mib.Layer2Query); ok {
				assert.Empty(t, l.Layer2(ctx))
			}
			if l, ok := q.(mib.Layer3Query); ok {
				assert.Empty(t, l.Layer3(ctx))
			}
			for _, tag := range kind.Tags {
				assert.True(t, mib.Implements(q, tag), "declares %s", tag)
			}
		})
	}
}

func TestC2900Layer1(t *testing.T) {
	s := snmptest.New().
		Set(oidC2900PortEntry+".25.1.1", 1).
		Set(oidC2900PortEntry+".25.1.2", 2).
		Set(oidC2900PortEntry+".18.1.1", 1).
		Set(oidC2900PortEntry+".32.1.1", 1).
		Set(oidC2900PortEntry+".32.1.2", 2).
		Set(oidC2900PortEntry+".32.2.1", 2)

	q := NewC2900Query(mib.NewDevice(s, nil)).(*C2900Query)
	require.True(t, q.Supported(context.Background()))
	assert.Equal(t, mib.IndexedData{
		1: {"c2900PortLinkbeatStatus": 1, "c2900PortDuplexStatus": 1},
		2: {"c2900PortDuplexStatus": 2},
	}, q.Layer1(context.Background()))
}

func TestStackLayer1(t *testing.T) {
	s := snmptest.New().
		Set(oidStackPortEntry+".11.1.1", 3).
		Set(oidStackPortEntry+".11.1.2", 0).
		Set(oidStackPortEntry+".10.1.1", 2).
		Set(oidStackPortEntry+".10.1.2", 4)

	q := NewStackQuery(mib.NewDevice(s, nil)).(*StackQuery)
	require.True(t, q.Supported(context.Background()))
	assert.Equal(t, mib.IndexedData{3: {"portDuplex": 2}}, q.Layer1(context.Background()))
}

func TestESSwitchLayer1(t *testing.T) {
	s := snmptest.New().Set(oidSwPortDuplexStatus+".5", 1)
	q := NewESSwitchQuery(mib.NewDevice(s, nil)).(*ESSwitchQuery)
	require.True(t, q.Supported(context.Background()))
	assert.Equal(t, mib.IndexedData{5: {"swPortDuplexStatus": 1}}, q.Layer1(context.Background()))
}

func TestCDPLayer1(t *testing.T) {
	s := snmptest.New().
		Set(oidCdpCacheEntry+".6.10101.2", "dist1.example.net").
		Set(oidCdpCacheEntry+".7.10101.2", "TenGigabitEthernet1/1").
		Set(oidCdpCacheEntry+".8.10101.2", "cisco WS-C4500X-16").
		Set(oidCdpCacheEntry+".4.10101.2", []byte{10, 0, 0, 1}).
		Set(oidCdpCacheEntry+".6.10101.7", "phone").
		Set(oidCdpCacheEntry+".6.10102.1", "ap1")

	q := NewCDPQuery(mib.NewDevice(s, nil)).(*CDPQuery)
	require.True(t, q.Supported(context.Background()))

	got := q.Layer1(context.Background())
	assert.Equal(t, mib.Attrs{
		"cdpCacheDeviceId":   "dist1.example.net",
		"cdpCacheDevicePort": "TenGigabitEthernet1/1",
		"cdpCachePlatform":   "cisco WS-C4500X-16",
		"cdpCacheAddress":    "10.0.0.1",
	}, got[10101])
	assert.Equal(t, "ap1", got[10102]["cdpCacheDeviceId"])
}

func TestIETFIPLayer3(t *testing.T) {
	s := snmptest.New().
		Set(oidCInetNetToMediaPhysAddress+".5.2.16.254.128.0.0.0.0.0.0.53.111.109.168.125.42.84.88", mac).
		Set(oidCInetNetToMediaPhysAddress+".5.1.4.10.0.0.1", mac)

	q := NewIETFIPQuery(mib.NewDevice(s, nil)).(*IETFIPQuery)
	require.True(t, q.Supported(context.Background()))
	assert.Equal(t, mib.KeyedData{
		"cInetNetToMediaPhysAddress": {"fe80:0000:0000:0000:356f:6da8:7d2a:5458": "0016c29c1550"},
	}, q.Layer3(context.Background()))
}

func TestVLANIfTableLayer1(t *testing.T) {
	s := snmptest.New().
		Set(oidCviRoutedVlanIfIndex+".20.0", 120).
		Set(oidCviRoutedVlanIfIndex+".30.0", 0)

	q := NewVLANIfTableQuery(mib.NewDevice(s, nil)).(*VLANIfTableQuery)
	assert.Equal(t, mib.IndexedData{120: {"cviRoutedVlanIfIndex": 20}}, q.Layer1(context.Background()))
}

func TestVLANMembershipLayer1(t *testing.T) {
	s := snmptest.New().
		Set(oidVmMembershipEntry+".2.10101", 20).
		Set(oidVmMembershipEntry+".3.10101", 2)

	q := NewVLANMembershipQuery(mib.NewDevice(s, nil)).(*VLANMembershipQuery)
	require.True(t, q.Supported(context.Background()))
	assert.Equal(t, mib.IndexedData{10101: {"vmVlan": 20, "vmPortStatus": 2}}, q.Layer1(context.Background()))
}

func TestVTPLayers(t *testing.T) {
	mask := make([]byte, 128)
	mask[0] = 0xc0 // VLANs 0 and 1
	mask[1] = 0x40 // VLAN 9
	mask2k := make([]byte, 128)
	mask2k[0] = 0x80 // VLAN 1024

	s := snmptest.New().
		Set(mib.OIDVtpVlanState+".1.1", 1).
		Set(oidVtpVlanEntry+".3.1.1", 1).
		Set(oidVtpVlanEntry+".4.1.1", "default").
		Set(oidVtpVlanEntry+".4.1.20", "users").
		// trunking port
		Set(oidVlanTrunkPortEntry+".14.10101", 1).
		Set(oidVlanTrunkPortEntry+".5.10101", 1).
		Set(oidVlanTrunkPortEntry+".4.10101", mask).
		Set(oidVlanTrunkPortEntry+".17.10101", mask2k).
		// access port with the default all-VLANs vector
		Set(oidVlanTrunkPortEntry+".14.10102", 2).
		Set(oidVlanTrunkPortEntry+".4.10102", mask)

	q := NewVTPQuery(mib.NewDevice(s, nil)).(*VTPQuery)
	require.True(t, q.Supported(context.Background()))

	l1 := q.Layer1(context.Background())
	assert.Equal(t, []int{0, 1, 9, 1024}, l1[10101]["vlanTrunkPortVlansEnabled"])
	assert.Equal(t, 1, l1[10101]["vlanTrunkPortNativeVlan"])
	assert.NotContains(t, l1[10102], "vlanTrunkPortVlansEnabled")
	assert.Equal(t, 2, l1[10102]["vlanTrunkPortDynamicStatus"])

	l2 := q.Layer2(context.Background())
	assert.Equal(t, mib.Attrs{"vtpVlanName": "default", "vtpVlanType": 1, "vtpVlanState": 1}, l2[1])
	assert.Equal(t, mib.Attrs{"vtpVlanName": "users"}, l2[20])

	assert.Equal(t, l1, q.Layer1(context.Background()), "idempotent")
}
