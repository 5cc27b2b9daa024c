package catalog

import (
	"context"
	"strconv"
	"testing"

	"github.com/gosnmp/gosnmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-netmap/internal/mib"
	"go-netmap/internal/snmp/snmptest"
)

func TestNew(t *testing.T) {
	reg := New()
	assert.Equal(t, 19, reg.Len())
	assert.Contains(t, reg.Names(), "IF-MIB")
	assert.Contains(t, reg.Names(), "JUNIPER-VLAN-MIB")
	assert.Len(t, reg.ForTag(mib.TagSystem), 2)
	assert.Len(t, reg.ForTag(mib.TagLayer3), 3)
	assert.Len(t, reg.ForTag(mib.TagLayer2), 3)
}

func TestKindsImplementTheirTags(t *testing.T) {
	d := mib.NewDevice(snmptest.New(), nil)
	for _, kind := range New().Kinds() {
		q := kind.New(d)
		assert.Equal(t, kind.Name, q.Name())
		assert.ElementsMatch(t, kind.Tags, q.Tags(), kind.Name)
		for _, tag := range kind.Tags {
			assert.True(t, mib.Implements(q, tag), "%s %s", kind.Name, tag)
		}
	}
}

func TestEverythingOnAccessSwitch(t *testing.T) {
	s := snmptest.New().
		SetPDU("", mib.OIDSysObjectID, gosnmp.ObjectIdentifier, ".1.3.6.1.4.1.25506.11.1.1").
		Set("1.3.6.1.2.1.1.5.0", "edge-sw3").
		Set(mib.OIDDot1dBasePortIfIndex+".1", 1).
		Set("1.3.6.1.2.1.17.7.1.4.5.1.1.2", 30).
		Set("1.3.6.1.2.1.17.7.1.4.3.1.1.30", "printers").
		Set("1.3.6.1.2.1.4.22.1.2.2.10.0.30.5", []byte{0x00, 0x16, 0xc2, 0x9c, 0x15, 0x50}).
		// LLDP walks time out
		Fail("1.0.8802", nil)
	for i := 1; i <= 8; i++ {
		s.Set(mib.OIDIfIndex+"."+strconv.Itoa(i), i)
		s.Set("1.3.6.1.2.1.2.2.1.2."+strconv.Itoa(i), "port "+strconv.Itoa(i))
	}

	a := mib.NewAggregator(New(), s)
	require.NoError(t, a.Reachable(context.Background()))

	doc, err := a.Everything(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"SNMPv2-MIB", "IF-MIB", "BRIDGE-MIB", "Q-BRIDGE-MIB", "IP-MIB"}, doc.Misc.Supported)
	assert.Equal(t, "edge-sw3", doc.System["sysName"]["0"])
	assert.Equal(t, "port 2", doc.Layer1[2]["ifDescr"])
	assert.Equal(t, 2, doc.Layer1[2]["dot1dBasePort"])
	assert.Equal(t, 30, doc.Layer1[2]["dot1qPvid"])
	assert.Equal(t, mib.Attrs{"dot1qVlanStaticName": "printers"}, doc.Layer2[30])
	assert.Equal(t, "0016c29c1550", doc.Layer3["ipNetToMediaTable"]["10.0.30.5"])
}
