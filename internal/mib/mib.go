// Package mib is the MIB query engine: the adapter contract, the device-scoped
// cross references between index spaces, the adapter registry and the
// per-device aggregator that merges adapter results into one document.
//
// Every adapter answers for one MIB and contributes to one or more layer
// tags. Results are merged at the (index, attribute) leaf, so two adapters
// describing different attributes of the same interface both survive.
package mib

import (
	"fmt"
	"sort"
)

// Tag classifies what an adapter contributes.
type Tag string

// Layer tags.
const (
	TagSystem Tag = "system"
	TagLayer1 Tag = "layer1"
	TagLayer2 Tag = "layer2"
	TagLayer3 Tag = "layer3"
)

// AllTags lists the tags in document order.
var AllTags = []Tag{TagSystem, TagLayer1, TagLayer2, TagLayer3}

// Attrs maps attribute names to decoded values.
type Attrs map[string]any

// IndexedData is keyed by an integer index first: ifIndex for layer1, VLAN
// tag for layer2.
type IndexedData map[int]Attrs

// Set stores one leaf.
func (d IndexedData) Set(index int, attr string, v any) {
	attrs, ok := d[index]
	if !ok {
		attrs = make(Attrs)
		d[index] = attrs
	}
	attrs[attr] = v
}

// Merge copies every leaf of other into d and returns the leaves that were
// already present.
func (d IndexedData) Merge(other IndexedData) []string {
	var conflicts []string
	for index, attrs := range other {
		for attr, v := range attrs {
			if _, ok := d[index][attr]; ok {
				conflicts = append(conflicts, fmt.Sprintf("%d/%s", index, attr))
			}
			d.Set(index, attr, v)
		}
	}
	return conflicts
}

// Indexes returns the sorted keys.
func (d IndexedData) Indexes() []int {
	keys := make([]int, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// KeyedData is keyed by attribute first, then by a secondary key: an IP
// address, an entPhysicalIndex, or "0" for scalars.
type KeyedData map[string]map[string]any

// Set stores one leaf.
func (d KeyedData) Set(attr, key string, v any) {
	values, ok := d[attr]
	if !ok {
		values = make(map[string]any)
		d[attr] = values
	}
	values[key] = v
}

// Merge copies every leaf of other into d and returns the leaves that were
// already present.
func (d KeyedData) Merge(other KeyedData) []string {
	var conflicts []string
	for attr, values := range other {
		for key, v := range values {
			if _, ok := d[attr][key]; ok {
				conflicts = append(conflicts, attr+"/"+key)
			}
			d.Set(attr, key, v)
		}
	}
	return conflicts
}

// Misc carries poll metadata. The poller fills it.
type Misc struct {
	Timestamp  int64    `json:"timestamp"`
	Host       string   `json:"host"`
	Hostname   string   `json:"hostname"`
	Enterprise int      `json:"enterprise"`
	Supported  []string `json:"supported,omitempty"`
}

// Document is everything learned about one device in one poll.
type Document struct {
	Misc   Misc        `json:"misc"`
	System KeyedData   `json:"system"`
	Layer1 IndexedData `json:"layer1"`
	Layer2 IndexedData `json:"layer2"`
	Layer3 KeyedData   `json:"layer3"`
}

// NewDocument returns a Document with empty sections.
func NewDocument() *Document {
	return &Document{
		System: make(KeyedData),
		Layer1: make(IndexedData),
		Layer2: make(IndexedData),
		Layer3: make(KeyedData),
	}
}

// Empty reports whether no layer has data.
func (d *Document) Empty() bool {
	return len(d.System) == 0 && len(d.Layer1) == 0 && len(d.Layer2) == 0 && len(d.Layer3) == 0
}
