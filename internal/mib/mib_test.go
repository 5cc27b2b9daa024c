package mib

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/gosnmp/gosnmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-netmap/internal/snmp/snmptest"
)

// fakeQuery is a layer1 adapter whose data is fixed.
type fakeQuery struct {
	Base
	data IndexedData
}

func (q *fakeQuery) Layer1(ctx context.Context) IndexedData {
	out := make(IndexedData)
	if !q.Supported(ctx) {
		return out
	}
	out.Merge(q.data)
	return out
}

func fakeKind(name, probe string, data IndexedData) Kind {
	return Kind{
		Name: name,
		Tags: []Tag{TagLayer1},
		New: func(d *Device) Query {
			return &fakeQuery{
				Base: NewBase(d, name, probe, []Tag{TagLayer1}, map[string]string{"probe": probe}),
				data: data,
			}
		},
	}
}

func TestIndexedMerge(t *testing.T) {
	merged := IndexedData{10: {"ifDescr": "Gi1/0/1"}}
	conflicts := merged.Merge(IndexedData{10: {"ifSpeed": 1000000000}})

	assert.Empty(t, conflicts)
	assert.Equal(t, IndexedData{10: {"ifDescr": "Gi1/0/1", "ifSpeed": 1000000000}}, merged)

	conflicts = merged.Merge(IndexedData{10: {"ifSpeed": 10}})
	assert.Equal(t, []string{"10/ifSpeed"}, conflicts)
}

func TestKeyedMerge(t *testing.T) {
	merged := KeyedData{"ipNetToMediaTable": {"10.0.0.1": "0016c29c1550"}}
	merged.Merge(KeyedData{
		"ipNetToMediaTable":          {"10.0.0.2": "0016c29c1551"},
		"ipNetToPhysicalPhysAddress": {"fe80:0000:0000:0000:0000:0000:0000:0001": "0016c29c1552"},
	})
	assert.Len(t, merged["ipNetToMediaTable"], 2)
	assert.Len(t, merged["ipNetToPhysicalPhysAddress"], 1)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry(
		fakeKind("A-MIB", "1.1", nil),
		Kind{Name: "B-MIB", Tags: []Tag{TagSystem, TagLayer3}, New: func(d *Device) Query { return nil }},
	)
	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, []string{"A-MIB", "B-MIB"}, reg.Names())
	assert.Len(t, reg.ForTag(TagLayer1), 1)
	assert.Len(t, reg.ForTag(TagLayer3), 1)
	assert.Empty(t, reg.ForTag(TagLayer2))

	assert.Panics(t, func() { NewRegistry(fakeKind("A-MIB", "1", nil), fakeKind("A-MIB", "2", nil)) })
	assert.Panics(t, func() { NewRegistry(Kind{Name: "C-MIB", New: func(d *Device) Query { return nil }}) })
}

func TestOffsetAndBasePortMap(t *testing.T) {
	ifIndexes := make([]int, 48)
	for i := range ifIndexes {
		ifIndexes[i] = i + 1
	}

	offset, ok := Offset(map[int]int{0: 1, 5: 6})
	require.True(t, ok)
	assert.Equal(t, 1, offset)

	ports := BasePortMap(ifIndexes, offset)
	assert.Equal(t, 48, ports[47])
	assert.Equal(t, 1, ports[0])
	assert.Len(t, ports, 48)

	_, ok = Offset(nil)
	assert.False(t, ok)
}

func TestDeviceBasePorts(t *testing.T) {
	s := snmptest.New()
	for i := 1; i <= 48; i++ {
		s.Set(OIDIfIndex+"."+strconv.Itoa(i), i)
	}
	s.Set(OIDDot1dBasePortIfIndex+".0", 1)

	d := NewDevice(s, nil)
	ports := d.BasePorts(context.Background(), "")
	assert.Equal(t, 48, ports[47])

	// computed once
	d.BasePorts(context.Background(), "")
	assert.Equal(t, 1, s.Calls(OIDDot1dBasePortIfIndex))
}

func TestDeviceBasePortsMissingTable(t *testing.T) {
	s := snmptest.New().Set(OIDIfIndex+".1", 1)
	d := NewDevice(s, nil)
	assert.Empty(t, d.BasePorts(context.Background(), ""))
}

func TestDeviceEnterprise(t *testing.T) {
	s := snmptest.New().SetPDU("", OIDSysObjectID, gosnmp.ObjectIdentifier, ".1.3.6.1.4.1.9.1.1208")
	d := NewDevice(s, nil)
	assert.Equal(t, EnterpriseCisco, d.Enterprise(context.Background()))
	assert.True(t, d.IsCisco(context.Background()))
	assert.False(t, d.IsJuniper(context.Background()))

	unknown := NewDevice(snmptest.New(), nil)
	assert.Equal(t, 0, unknown.Enterprise(context.Background()))
}

func TestDeviceJuniperVLANs(t *testing.T) {
	s := snmptest.New().
		SetPDU("", OIDSysObjectID, gosnmp.ObjectIdentifier, ".1.3.6.1.4.1.2636.1.1.1.2.31").
		Set(OIDJnxExVlanTag+".2", 100).
		Set(OIDJnxExVlanTag+".3", 200).
		Set(OIDJnxExVlanTag+".4", "bogus")
	d := NewDevice(s, nil)
	assert.True(t, d.IsJuniper(context.Background()))
	assert.Equal(t, map[int]int{2: 100, 3: 200}, d.JuniperVLANs(context.Background()))

	d.JuniperVLANs(context.Background())
	assert.Equal(t, 1, s.Calls(OIDJnxExVlanTag), "walked once")
}

func TestCiscoVLANsAndContextStyle(t *testing.T) {
	s := snmptest.New().
		Set(OIDVtpVlanState+".1.1", 1).
		Set(OIDVtpVlanState+".1.20", 1).
		Set(OIDVtpVlanState+".1.30", 2).
		Set(OIDVtpVlanState+".1.1002", 1).
		SetIn("vlan-1", OIDDot1dBasePortIfIndex+".1", 10001)

	d := NewDevice(s, nil)
	ctx := context.Background()
	assert.Equal(t, []int{1, 20}, d.CiscoVLANs(ctx))
	assert.Equal(t, StyleVLANPrefix, d.ContextStyle(ctx))
	assert.Equal(t, "vlan-20", d.VLANContext(ctx, 20))

	bare := snmptest.New().
		Set(OIDVtpVlanState+".1.5", 1).
		SetIn("5", OIDDot1dBasePortIfIndex+".1", 10001).
		SetIn("vlan-5", OIDDot1dBasePortIfIndex+".1", 10001)
	assert.Equal(t, StyleBare, NewDevice(bare, nil).ContextStyle(ctx))

	none := NewDevice(snmptest.New(), nil)
	assert.Equal(t, StyleBare, none.ContextStyle(ctx))
	assert.Equal(t, "7", none.VLANContext(ctx, 7))
}

func TestAggregatorMergesLayer1(t *testing.T) {
	s := snmptest.New().Set("1.1.0", 1).Set("1.2.0", 1)
	reg := NewRegistry(
		fakeKind("DESCR-MIB", "1.1.0", IndexedData{10: {"ifDescr": "Gi1/0/1"}}),
		fakeKind("SPEED-MIB", "1.2.0", IndexedData{10: {"ifSpeed": 1000000000}}),
		fakeKind("ABSENT-MIB", "1.3.0", IndexedData{10: {"ifAlias": "never"}}),
	)

	a := NewAggregator(reg, s)
	got, err := a.Layer1(context.Background())
	require.NoError(t, err)
	assert.Equal(t, IndexedData{10: {"ifDescr": "Gi1/0/1", "ifSpeed": 1000000000}}, got)
	assert.Equal(t, []string{"DESCR-MIB", "SPEED-MIB"}, names(a.Supported(context.Background())))
}

func TestAggregatorToleratesPanickingProbe(t *testing.T) {
	s := snmptest.New().Set("1.1.0", 1).Set("1.2.0", 1).Panic("1.9")
	reg := NewRegistry(
		fakeKind("DESCR-MIB", "1.1.0", IndexedData{10: {"ifDescr": "Gi1/0/1"}}),
		fakeKind("BROKEN-MIB", "1.9.0", IndexedData{10: {"ifAlias": "x"}}),
		fakeKind("SPEED-MIB", "1.2.0", IndexedData{10: {"ifSpeed": 100}}),
	)

	doc, err := NewAggregator(reg, s, WithConcurrency(1)).Everything(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"DESCR-MIB", "SPEED-MIB"}, doc.Misc.Supported)
	assert.Equal(t, IndexedData{10: {"ifDescr": "Gi1/0/1", "ifSpeed": 100}}, doc.Layer1)
	assert.Empty(t, doc.System)
}

func TestAggregatorToleratesFailingProbe(t *testing.T) {
	s := snmptest.New().Set("1.1.0", 1).Fail("1.2", nil)
	reg := NewRegistry(
		fakeKind("DESCR-MIB", "1.1.0", IndexedData{10: {"ifDescr": "Gi1/0/1"}}),
		fakeKind("SPEED-MIB", "1.2.0", IndexedData{10: {"ifSpeed": 100}}),
	)
	got, err := NewAggregator(reg, s).Layer1(context.Background())
	require.NoError(t, err)
	assert.Equal(t, IndexedData{10: {"ifDescr": "Gi1/0/1"}}, got)
}

func TestAggregatorNothingSupported(t *testing.T) {
	reg := NewRegistry(fakeKind("DESCR-MIB", "1.1.0", nil))
	a := NewAggregator(reg, snmptest.New())

	_, err := a.Layer1(context.Background())
	assert.ErrorIs(t, err, ErrNothingSupported)

	_, err = a.System(context.Background())
	assert.ErrorIs(t, err, ErrNothingSupported)

	doc, err := a.Everything(context.Background())
	assert.ErrorIs(t, err, ErrNothingSupported)
	assert.True(t, doc.Empty())
}

func TestAggregatorReachable(t *testing.T) {
	reg := NewRegistry(fakeKind("DESCR-MIB", "1.1.0", nil))

	up := snmptest.New().SetPDU("", OIDSysObjectID, gosnmp.ObjectIdentifier, ".1.3.6.1.4.1.9.1.1")
	assert.NoError(t, NewAggregator(reg, up).Reachable(context.Background()))

	down := snmptest.New().Fail(OIDSysObjectID, errors.New("request timeout"))
	err := NewAggregator(reg, down).Reachable(context.Background())
	assert.ErrorIs(t, err, ErrUnreachable)
	assert.False(t, errors.Is(err, ErrNothingSupported))

	silent := snmptest.New()
	assert.ErrorIs(t, NewAggregator(reg, silent).Reachable(context.Background()), ErrUnreachable)
}

func TestImplements(t *testing.T) {
	q := fakeKind("A-MIB", "1", nil).New(NewDevice(snmptest.New(), nil))
	assert.True(t, Implements(q, TagLayer1))
	assert.False(t, Implements(q, TagSystem))
	assert.False(t, Implements(q, TagLayer2))
}
