// Package db persists switches and what polling learned about them.
package db

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"go-netmap/internal/models"
)

// ErrNotFound is returned when a switch or its snapshot does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps the gorm handle.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open opens (creating if needed) the sqlite database at path and migrates
// the schema.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	err = db.AutoMigrate(
		&models.Switch{},
		&models.PortStatus{},
		&models.MacEntry{},
		&models.ArpEntry{},
		&models.Snapshot{},
	)
	if err != nil {
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Switches returns every switch ordered by name.
func (s *Store) Switches(ctx context.Context) ([]models.Switch, error) {
	var switches []models.Switch
	err := s.db.WithContext(ctx).Order("name asc").Find(&switches).Error
	return switches, err
}

// Switch returns one switch.
func (s *Store) Switch(ctx context.Context, id uint) (models.Switch, error) {
	var sw models.Switch
	err := s.db.WithContext(ctx).First(&sw, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sw, fmt.Errorf("switch %d: %w", id, ErrNotFound)
	}
	return sw, err
}

// AddSwitch inserts sw and sets its ID.
func (s *Store) AddSwitch(ctx context.Context, sw *models.Switch) error {
	return s.db.WithContext(ctx).Create(sw).Error
}

// UpsertSwitch inserts sw or, when a switch of the same name exists,
// replaces its address and credentials. Poll results are left alone.
func (s *Store) UpsertSwitch(ctx context.Context, sw *models.Switch) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"ip_address", "port", "version", "community",
			"username", "auth_protocol", "auth_password", "priv_protocol", "priv_password",
		}),
	}).Create(sw).Error
}

// DeleteSwitch removes a switch and everything polled from it.
func (s *Store) DeleteSwitch(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Switch{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("switch %d: %w", id, ErrNotFound)
		}
		for _, m := range []interface{}{&models.PortStatus{}, &models.MacEntry{}, &models.ArpEntry{}, &models.Snapshot{}} {
			if err := tx.Where("switch_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// RecordFailure stores why the last poll of a switch failed.
func (s *Store) RecordFailure(ctx context.Context, id uint, at int64, cause error) error {
	return s.db.WithContext(ctx).Model(&models.Switch{}).Where("id = ?", id).
		Updates(map[string]interface{}{"last_polled": at, "last_error": cause.Error()}).Error
}

// Ports returns the ports of a switch ordered by ifIndex.
func (s *Store) Ports(ctx context.Context, switchID uint) ([]models.PortStatus, error) {
	var ports []models.PortStatus
	err := s.db.WithContext(ctx).Where("switch_id = ?", switchID).Order("port_index asc").Find(&ports).Error
	return ports, err
}

// Macs returns the MACs learned on one port.
func (s *Store) Macs(ctx context.Context, switchID uint, portIndex int) ([]models.MacEntry, error) {
	var macs []models.MacEntry
	err := s.db.WithContext(ctx).
		Where("switch_id = ? AND port_index = ?", switchID, portIndex).
		Order("vlan asc, mac asc").
		Find(&macs).Error
	return macs, err
}

// Snapshot returns the last document polled from a switch.
func (s *Store) Snapshot(ctx context.Context, switchID uint) (models.Snapshot, error) {
	var snap models.Snapshot
	err := s.db.WithContext(ctx).Where("switch_id = ?", switchID).First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return snap, fmt.Errorf("snapshot of switch %d: %w", switchID, ErrNotFound)
	}
	return snap, err
}

// MacResult is one hit of a MAC search.
type MacResult struct {
	MAC       string `json:"mac"`
	Switch    string `json:"switch"`
	IP        string `json:"ip"`
	PortIndex int    `json:"port_index"`
	PortName  string `json:"port_name"`
	VLAN      int    `json:"vlan"`
	HostIP    string `json:"host_ip,omitempty"`
}

// SearchMAC finds learned MACs containing query, with the switch and port
// they were seen on and any address the ARP tables know for them.
func (s *Store) SearchMAC(ctx context.Context, query string) ([]MacResult, error) {
	var results []MacResult
	err := s.db.WithContext(ctx).Table("mac_entries").
		Select("mac_entries.mac, switches.name as switch, switches.ip_address as ip, mac_entries.port_index, " +
			"port_statuses.port_name, mac_entries.vlan, " +
			"(SELECT arp_entries.ip FROM arp_entries WHERE arp_entries.mac = mac_entries.mac LIMIT 1) as host_ip").
		Joins("left join switches on switches.id = mac_entries.switch_id").
		Joins("left join port_statuses on port_statuses.switch_id = mac_entries.switch_id AND port_statuses.port_index = mac_entries.port_index").
		Where("mac_entries.mac LIKE ?", "%"+NormalizeMAC(query)+"%").
		Order("mac_entries.mac asc, switches.name asc").
		Scan(&results).Error
	return results, err
}
