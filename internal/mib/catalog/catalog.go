// Package catalog assembles the registry of every MIB adapter the poller
// knows about.
package catalog

import (
	"go-netmap/internal/mib"
	"go-netmap/internal/mib/cisco"
	"go-netmap/internal/mib/generic"
	"go-netmap/internal/mib/juniper"
)

// New returns the registry with every adapter kind, standard MIBs first.
func New() *mib.Registry {
	return mib.NewRegistry(
		generic.SNMPv2Kind(),
		generic.EntityKind(),
		generic.IfKind(),
		generic.IfHCKind(),
		generic.EtherLikeKind(),
		generic.BridgeKind(),
		generic.QBridgeKind(),
		generic.IPKind(),
		generic.IPv6Kind(),
		generic.LLDPKind(),
		cisco.C2900Kind(),
		cisco.CDPKind(),
		cisco.IETFIPKind(),
		cisco.StackKind(),
		cisco.VLANIfTableKind(),
		cisco.VLANMembershipKind(),
		cisco.VTPKind(),
		cisco.ESSwitchKind(),
		juniper.VLANKind(),
	)
}
