package models

import (
	"go-netmap/internal/mib"
)

// Switch is one polled device and how to reach it.
type Switch struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"uniqueIndex" json:"name"`
	IPAddress string `json:"ip_address"`
	Port      uint16 `json:"port,omitempty"`
	Version   string `json:"version"` // "1", "2c" or "3"
	Community string `json:"-"`

	Username     string `json:"username,omitempty"`
	AuthProtocol string `json:"auth_protocol,omitempty"`
	AuthPassword string `json:"-"`
	PrivProtocol string `json:"priv_protocol,omitempty"`
	PrivPassword string `json:"-"`

	Hostname   string `json:"hostname"`
	Enterprise int    `json:"enterprise"`
	LastPolled int64  `json:"last_polled"`
	LastError  string `json:"last_error,omitempty"`
}

// PortStatus is the last known state of one interface.
type PortStatus struct {
	ID            uint   `gorm:"primaryKey" json:"-"`
	SwitchID      uint   `gorm:"uniqueIndex:idx_port" json:"switch_id"`
	PortIndex     int    `gorm:"uniqueIndex:idx_port" json:"port_index"` // ifIndex
	PortName      string `json:"port_name"`
	DisplayName   string `json:"display_name"`
	IfType        string `json:"if_type"`
	Alias         string `json:"alias,omitempty"`
	Status        string `json:"status"`
	StatusChanges int    `json:"status_changes"`
	SpeedMbps     int    `json:"speed_mbps"`
	Duplex        string `json:"duplex,omitempty"`
	VLAN          int    `json:"vlan,omitempty"`
	Neighbor      string `json:"neighbor,omitempty"`
}

// MacEntry is a MAC address learned on a port.
type MacEntry struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	SwitchID  uint   `gorm:"uniqueIndex:idx_mac" json:"switch_id"`
	PortIndex int    `gorm:"uniqueIndex:idx_mac" json:"port_index"`
	VLAN      int    `gorm:"uniqueIndex:idx_mac" json:"vlan"`
	MAC       string `gorm:"uniqueIndex:idx_mac;index" json:"mac"`
	LastSeen  int64  `json:"last_seen"`
}

// ArpEntry is an IPv4 ARP or IPv6 neighbor entry.
type ArpEntry struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	SwitchID uint   `gorm:"uniqueIndex:idx_arp" json:"switch_id"`
	IP       string `gorm:"uniqueIndex:idx_arp" json:"ip"`
	MAC      string `gorm:"index" json:"mac"`
	LastSeen int64  `json:"last_seen"`
}

// Snapshot is the last full document polled from a switch.
type Snapshot struct {
	ID        uint          `gorm:"primaryKey" json:"-"`
	SwitchID  uint          `gorm:"uniqueIndex" json:"switch_id"`
	CycleID   string        `json:"cycle_id"`
	Timestamp int64         `json:"timestamp"`
	Document  *mib.Document `gorm:"serializer:json" json:"document"`
}
