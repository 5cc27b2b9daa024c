package db

import (
	"context"
	"sort"
	"strings"

	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-netmap/internal/mib"
	"go-netmap/internal/models"
	"go-netmap/internal/oid"
	"go-netmap/internal/portname"
)

// Layer3 attributes holding address -> MAC tables.
var arpTables = []string{
	"ipNetToMediaTable",
	"ipNetToPhysicalPhysAddress",
	"ipv6NetToMediaPhysAddress",
	"cInetNetToMediaPhysAddress",
}

// SaveDocument stores one poll of sw: the document itself as the switch's
// snapshot, the port table, the learned MACs and the ARP entries. A port
// whose oper status changed since the last poll has its change counter
// bumped.
func (s *Store) SaveDocument(ctx context.Context, sw models.Switch, cycle string, doc *mib.Document) error {
	at := doc.Misc.Timestamp
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Switch{}).Where("id = ?", sw.ID).Updates(map[string]interface{}{
			"hostname":    doc.Misc.Hostname,
			"enterprise":  doc.Misc.Enterprise,
			"last_polled": at,
			"last_error":  "",
		}).Error
		if err != nil {
			return err
		}

		snap := models.Snapshot{SwitchID: sw.ID, CycleID: cycle, Timestamp: at, Document: doc}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "switch_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"cycle_id", "timestamp", "document"}),
		}).Create(&snap).Error
		if err != nil {
			return err
		}

		if err := s.savePorts(tx, sw.ID, doc.Layer1); err != nil {
			return err
		}
		if err := saveMacs(tx, sw.ID, at, doc.Layer1); err != nil {
			return err
		}
		return saveArp(tx, sw.ID, at, doc.Layer3)
	})
}

func (s *Store) savePorts(tx *gorm.DB, switchID uint, layer1 mib.IndexedData) error {
	var existing []models.PortStatus
	if err := tx.Where("switch_id = ?", switchID).Find(&existing).Error; err != nil {
		return err
	}
	known := make(map[int]models.PortStatus, len(existing))
	for _, p := range existing {
		known[p.PortIndex] = p
	}

	for _, ifIndex := range layer1.Indexes() {
		attrs := layer1[ifIndex]
		if _, ok := attrs["ifOperStatus"]; !ok {
			// not an interface of ifTable, e.g. a neighbor on an unknown port
			continue
		}
		port := portFromAttrs(switchID, ifIndex, attrs)
		if prev, ok := known[ifIndex]; ok {
			port.ID = prev.ID
			port.StatusChanges = prev.StatusChanges
			if prev.Status != port.Status {
				port.StatusChanges++
				s.logger.Debug("port status changed",
					zap.Uint("switch", switchID),
					zap.Int("ifIndex", ifIndex),
					zap.String("from", prev.Status),
					zap.String("to", port.Status))
			}
		}
		if err := tx.Save(&port).Error; err != nil {
			return err
		}
	}
	return nil
}

func portFromAttrs(switchID uint, ifIndex int, attrs mib.Attrs) models.PortStatus {
	name := cast.ToString(attrs["ifName"])
	if name == "" {
		name = cast.ToString(attrs["ifDescr"])
	}
	speed := cast.ToInt(attrs["ifHighSpeed"])
	if speed == 0 {
		speed = cast.ToInt(attrs["ifSpeed"]) / 1000000
	}
	port := models.PortStatus{
		SwitchID:    switchID,
		PortIndex:   ifIndex,
		PortName:    name,
		DisplayName: portname.Normalize(name),
		IfType:      oid.Label(oid.IntTypeNum, cast.ToInt(attrs["ifType"])),
		Alias:       cast.ToString(attrs["ifAlias"]),
		Status:      oid.Label(oid.OperState, cast.ToInt(attrs["ifOperStatus"])),
		SpeedMbps:   speed,
		VLAN:        portVLAN(attrs),
		Neighbor:    firstString(attrs, "lldpRemSysName", "cdpCacheDeviceId"),
	}
	if v, ok := attrs["dot3StatsDuplexStatus"]; ok {
		port.Duplex = oid.Label(oid.Duplex, cast.ToInt(v))
	}
	return port
}

// portVLAN picks the untagged VLAN of a port from whichever MIB reported it.
func portVLAN(attrs mib.Attrs) int {
	for _, attr := range []string{"vmVlan", "dot1qPvid", "vlanTrunkPortNativeVlan"} {
		if v, ok := attrs[attr]; ok {
			return cast.ToInt(v)
		}
	}
	if vlans, ok := attrs["jnxExVlanMembership"].([]int); ok && len(vlans) == 1 {
		return vlans[0]
	}
	return 0
}

func firstString(attrs mib.Attrs, names ...string) string {
	for _, name := range names {
		if s := cast.ToString(attrs[name]); s != "" {
			return s
		}
	}
	return ""
}

func saveMacs(tx *gorm.DB, switchID uint, at int64, layer1 mib.IndexedData) error {
	var entries []models.MacEntry
	for _, ifIndex := range layer1.Indexes() {
		fdb, ok := layer1[ifIndex]["dot1dTpFdbAddress"].(map[int][]string)
		if !ok {
			continue
		}
		vlans := make([]int, 0, len(fdb))
		for vlan := range fdb {
			vlans = append(vlans, vlan)
		}
		sort.Ints(vlans)
		for _, vlan := range vlans {
			for _, mac := range fdb[vlan] {
				entries = append(entries, models.MacEntry{SwitchID: switchID, PortIndex: ifIndex, VLAN: vlan, MAC: mac, LastSeen: at})
			}
		}
	}
	if len(entries) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "switch_id"}, {Name: "port_index"}, {Name: "vlan"}, {Name: "mac"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_seen"}),
	}).CreateInBatches(entries, 200).Error
}

func saveArp(tx *gorm.DB, switchID uint, at int64, layer3 mib.KeyedData) error {
	var entries []models.ArpEntry
	seen := make(map[string]bool)
	for _, table := range arpTables {
		rows := layer3[table]
		ips := make([]string, 0, len(rows))
		for ip := range rows {
			ips = append(ips, ip)
		}
		sort.Strings(ips)
		for _, ip := range ips {
			mac := cast.ToString(rows[ip])
			if mac == "" || seen[ip] {
				continue
			}
			seen[ip] = true
			entries = append(entries, models.ArpEntry{SwitchID: switchID, IP: ip, MAC: mac, LastSeen: at})
		}
	}
	if len(entries) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "switch_id"}, {Name: "ip"}},
		DoUpdates: clause.AssignmentColumns([]string{"mac", "last_seen"}),
	}).CreateInBatches(entries, 200).Error
}

// NormalizeMAC lowercases a full or partial MAC and drops separators, the
// form MACs are stored in.
func NormalizeMAC(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(":", "", "-", "", ".", "", " ", "").Replace(s)
}
