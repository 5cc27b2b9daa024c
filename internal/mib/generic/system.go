// Package generic holds the adapters for standard MIBs every vendor may
// implement.
package generic

import (
	"context"

	"go-netmap/internal/mib"
)

const oidSystem = "1.3.6.1.2.1.1"

// SNMPv2Query reads the system group of SNMPv2-MIB.
type SNMPv2Query struct {
	mib.Base
}

// SNMPv2Kind registers SNMPv2-MIB.
func SNMPv2Kind() mib.Kind {
	return mib.Kind{Name: "SNMPv2-MIB", Tags: []mib.Tag{mib.TagSystem}, New: NewSNMPv2Query}
}

// NewSNMPv2Query binds SNMPv2-MIB to d.
func NewSNMPv2Query(d *mib.Device) mib.Query {
	return &SNMPv2Query{Base: mib.NewBase(d, "SNMPv2-MIB", mib.OIDSysObjectID, []mib.Tag{mib.TagSystem}, map[string]string{
		"sysDescr":    oidSystem + ".1",
		"sysObjectID": oidSystem + ".2",
		"sysUpTime":   oidSystem + ".3",
		"sysContact":  oidSystem + ".4",
		"sysName":     oidSystem + ".5",
		"sysLocation": oidSystem + ".6",
	})}
}

// System returns the scalars under key "0".
func (q *SNMPv2Query) System(ctx context.Context) mib.KeyedData {
	out := make(mib.KeyedData)
	for _, attr := range []string{"sysDescr", "sysContact", "sysName", "sysLocation"} {
		mib.StoreKeyed(out, attr, mib.Walk(ctx, &q.Base, attr, mib.RawKey, mib.String))
	}
	mib.StoreKeyed(out, "sysObjectID", mib.Walk(ctx, &q.Base, "sysObjectID", mib.RawKey, mib.ObjectID))
	mib.StoreKeyed(out, "sysUpTime", mib.Walk(ctx, &q.Base, "sysUpTime", mib.RawKey, mib.Int))
	return out
}

const oidEntPhysical = "1.3.6.1.2.1.47.1.1.1.1"

// EntityQuery reads entPhysicalTable of ENTITY-MIB: chassis, modules, power
// supplies and their serial numbers.
type EntityQuery struct {
	mib.Base
}

// EntityKind registers ENTITY-MIB.
func EntityKind() mib.Kind {
	return mib.Kind{Name: "ENTITY-MIB", Tags: []mib.Tag{mib.TagSystem}, New: NewEntityQuery}
}

// NewEntityQuery binds ENTITY-MIB to d.
func NewEntityQuery(d *mib.Device) mib.Query {
	return &EntityQuery{Base: mib.NewBase(d, "ENTITY-MIB", oidEntPhysical+".2", []mib.Tag{mib.TagSystem}, map[string]string{
		"entPhysicalDescr":       oidEntPhysical + ".2",
		"entPhysicalVendorType":  oidEntPhysical + ".3",
		"entPhysicalContainedIn": oidEntPhysical + ".4",
		"entPhysicalClass":       oidEntPhysical + ".5",
		"entPhysicalName":        oidEntPhysical + ".7",
		"entPhysicalHardwareRev": oidEntPhysical + ".8",
		"entPhysicalFirmwareRev": oidEntPhysical + ".9",
		"entPhysicalSoftwareRev": oidEntPhysical + ".10",
		"entPhysicalSerialNum":   oidEntPhysical + ".11",
		"entPhysicalMfgName":     oidEntPhysical + ".12",
		"entPhysicalModelName":   oidEntPhysical + ".13",
	})}
}

// System returns every entPhysicalTable column keyed by entPhysicalIndex.
func (q *EntityQuery) System(ctx context.Context) mib.KeyedData {
	out := make(mib.KeyedData)
	for _, attr := range []string{
		"entPhysicalDescr",
		"entPhysicalName",
		"entPhysicalHardwareRev",
		"entPhysicalFirmwareRev",
		"entPhysicalSoftwareRev",
		"entPhysicalSerialNum",
		"entPhysicalMfgName",
		"entPhysicalModelName",
	} {
		mib.StoreKeyed(out, attr, mib.Walk(ctx, &q.Base, attr, mib.RawKey, mib.String))
	}
	mib.StoreKeyed(out, "entPhysicalVendorType", mib.Walk(ctx, &q.Base, "entPhysicalVendorType", mib.RawKey, mib.ObjectID))
	mib.StoreKeyed(out, "entPhysicalContainedIn", mib.Walk(ctx, &q.Base, "entPhysicalContainedIn", mib.RawKey, mib.Int))
	mib.StoreKeyed(out, "entPhysicalClass", mib.Walk(ctx, &q.Base, "entPhysicalClass", mib.RawKey, mib.Int))
	return out
}
