package mib

import (
	"context"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"go-netmap/internal/decode"
	"go-netmap/internal/oid"
	"go-netmap/internal/snmp"
)

// ContextStyle is how a Cisco device names its per-VLAN SNMP contexts.
type ContextStyle int

const (
	// StyleBare names the context after the VLAN number: "20".
	StyleBare ContextStyle = iota
	// StyleVLANPrefix uses "vlan-20".
	StyleVLANPrefix
)

// Name returns the context name for vlan.
func (s ContextStyle) Name(vlan int) string {
	if s == StyleVLANPrefix {
		return "vlan-" + strconv.Itoa(vlan)
	}
	return strconv.Itoa(vlan)
}

func (s ContextStyle) String() string {
	if s == StyleVLANPrefix {
		return "vlan-<n>"
	}
	return "<n>"
}

// CiscoVLANs returns the operational VLANs from CISCO-VTP-MIB vtpVlanState,
// without the reserved 1002-1005 range.
func (d *Device) CiscoVLANs(ctx context.Context) []int {
	d.vlansOnce.Do(func() {
		seen := make(map[int]bool)
		for key, pdu := range d.Walk(ctx, OIDVtpVlanState) {
			vlan, err := oid.Node(key, -1)
			if err != nil {
				d.skip("CISCO-VTP-MIB", "vtpVlanState", key, err)
				continue
			}
			state, err := decode.Int(pdu.Value)
			if err != nil || state != 1 {
				continue
			}
			if vlan >= 1002 && vlan <= 1005 {
				continue
			}
			if !seen[vlan] {
				seen[vlan] = true
				d.ciscoVLANs = append(d.ciscoVLANs, vlan)
			}
		}
		sort.Ints(d.ciscoVLANs)
	})
	return d.ciscoVLANs
}

// ContextStyle probes once per device which context naming convention
// answers: a real fail-safe walk of the bridge port table in the first
// active VLAN, bare number first. Non-empty wins. Devices answering neither
// get StyleBare.
func (d *Device) ContextStyle(ctx context.Context) ContextStyle {
	d.styleOnce.Do(func() {
		vlans := d.CiscoVLANs(ctx)
		if len(vlans) == 0 {
			return
		}
		for _, style := range []ContextStyle{StyleBare, StyleVLANPrefix} {
			name := style.Name(vlans[0])
			if len(d.SafeWalk(ctx, OIDDot1dBasePortIfIndex, snmp.Context(name))) > 0 {
				d.style = style
				d.logger.Debug("cisco context style", zap.Stringer("style", style))
				return
			}
		}
	})
	return d.style
}

// VLANContext returns the SNMP context name for vlan on this device.
func (d *Device) VLANContext(ctx context.Context, vlan int) string {
	return d.ContextStyle(ctx).Name(vlan)
}
