package mib

import (
	"context"
)

// Query is implemented by every MIB adapter.
type Query interface {
	// Name is the MIB name, e.g. "IF-MIB".
	Name() string
	// Tags lists the layers the adapter contributes to.
	Tags() []Tag
	// OIDs maps each attribute the adapter reads to its OID. No I/O.
	OIDs() map[string]string
	// Supported probes the device. Transport failures count as false.
	Supported(ctx context.Context) bool
}

// SystemQuery contributes device identity.
type SystemQuery interface {
	Query
	System(ctx context.Context) KeyedData
}

// Layer1Query contributes per-interface data keyed by ifIndex.
type Layer1Query interface {
	Query
	Layer1(ctx context.Context) IndexedData
}

// Layer2Query contributes per-VLAN data keyed by VLAN tag.
type Layer2Query interface {
	Query
	Layer2(ctx context.Context) IndexedData
}

// Layer3Query contributes address tables.
type Layer3Query interface {
	Query
	Layer3(ctx context.Context) KeyedData
}

// Kind describes an adapter type for the registry: what it is called, which
// tags it declares and how to build one for a device.
type Kind struct {
	Name string
	Tags []Tag
	New  func(d *Device) Query
}

// Has reports whether k declares tag.
func (k Kind) Has(tag Tag) bool {
	return hasTag(k.Tags, tag)
}

func hasTag(tags []Tag, tag Tag) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Implements reports whether q declares tag and has the matching method.
func Implements(q Query, tag Tag) bool {
	if !hasTag(q.Tags(), tag) {
		return false
	}
	switch tag {
	case TagSystem:
		_, ok := q.(SystemQuery)
		return ok
	case TagLayer1:
		_, ok := q.(Layer1Query)
		return ok
	case TagLayer2:
		_, ok := q.(Layer2Query)
		return ok
	case TagLayer3:
		_, ok := q.(Layer3Query)
		return ok
	}
	return false
}

// Base carries what every adapter needs: the device, the probe OID and the
// attribute to OID table. Adapters embed it.
type Base struct {
	name  string
	tags  []Tag
	probe string
	oids  map[string]string

	Device *Device
}

// NewBase binds an adapter to d. probe must exist on the device only if the
// MIB is implemented.
func NewBase(d *Device, name, probe string, tags []Tag, oids map[string]string) Base {
	return Base{name: name, tags: tags, probe: probe, oids: oids, Device: d}
}

// Name implements Query.
func (b *Base) Name() string { return b.name }

// Tags implements Query.
func (b *Base) Tags() []Tag { return b.tags }

// OIDs implements Query.
func (b *Base) OIDs() map[string]string {
	oids := make(map[string]string, len(b.oids))
	for k, v := range b.oids {
		oids[k] = v
	}
	return oids
}

// OID returns the OID bound to attr. Unknown attributes are a programming
// error.
func (b *Base) OID(attr string) string {
	o, ok := b.oids[attr]
	if !ok {
		panic("mib: " + b.name + " has no attribute " + attr)
	}
	return o
}

// Supported implements Query.
func (b *Base) Supported(ctx context.Context) bool {
	return b.Device.Exists(ctx, b.probe)
}
