// Package config reads process settings from the environment (and .env)
// and the switch inventory from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"go-netmap/internal/models"
)

// Config holds every env-driven setting.
type Config struct {
	WebHost          string
	WebPort          string
	PollInterval     time.Duration
	DBPath           string
	InventoryPath    string
	EnumsPath        string
	PollWorkers      int
	ProbeConcurrency int
	SNMPTimeout      time.Duration
	SNMPRetries      int
	LogLevel         string
	LogFormat        string
}

// getEnv fetches environment variable or returns fallback
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	n, err := cast.ToIntE(getEnv(key, ""))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// Load reads .env if present and then the process environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		WebHost:          getEnv("WEB_HOST", "0.0.0.0"),
		WebPort:          getEnv("WEB_PORT", "8080"),
		PollInterval:     time.Duration(getInt("POLL_INTERVAL", 600)) * time.Second,
		DBPath:           getEnv("DB_PATH", "/tmp/netmap.db"),
		InventoryPath:    getEnv("INVENTORY_PATH", ""),
		EnumsPath:        getEnv("ENUMS_PATH", ""),
		PollWorkers:      getInt("POLL_WORKERS", 4),
		ProbeConcurrency: getInt("PROBE_CONCURRENCY", 8),
		SNMPTimeout:      time.Duration(getInt("SNMP_TIMEOUT", 2)) * time.Second,
		SNMPRetries:      cast.ToInt(getEnv("SNMP_RETRIES", "1")),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "console"),
	}
}

// Device is one inventory entry.
type Device struct {
	Name      string `yaml:"name"`
	Host      string `yaml:"host"`
	Port      uint16 `yaml:"port"`
	Version   string `yaml:"version"`
	Community string `yaml:"community"`

	Username     string `yaml:"username"`
	AuthProtocol string `yaml:"auth_protocol"`
	AuthPassword string `yaml:"auth_password"`
	PrivProtocol string `yaml:"priv_protocol"`
	PrivPassword string `yaml:"priv_password"`
}

// Inventory is the YAML device list.
type Inventory struct {
	Defaults Device   `yaml:"defaults"`
	Devices  []Device `yaml:"devices"`
}

// ErrNoHost is returned for an inventory entry without a host.
var ErrNoHost = errors.New("inventory entry has no host")

// LoadInventory parses the inventory at path.
func LoadInventory(path string) ([]models.Switch, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}
	return ParseInventory(raw)
}

// ParseInventory turns YAML into switches. Empty fields of an entry take
// the value under defaults; a missing name falls back to the host.
func ParseInventory(raw []byte) ([]models.Switch, error) {
	var inv Inventory
	if err := yaml.Unmarshal(raw, &inv); err != nil {
		return nil, fmt.Errorf("parse inventory: %w", err)
	}

	switches := make([]models.Switch, 0, len(inv.Devices))
	for i, d := range inv.Devices {
		d = withDefaults(d, inv.Defaults)
		if d.Host == "" {
			return nil, fmt.Errorf("device %d: %w", i, ErrNoHost)
		}
		switches = append(switches, models.Switch{
			Name:         d.Name,
			IPAddress:    d.Host,
			Port:         d.Port,
			Version:      d.Version,
			Community:    d.Community,
			Username:     d.Username,
			AuthProtocol: d.AuthProtocol,
			AuthPassword: d.AuthPassword,
			PrivProtocol: d.PrivProtocol,
			PrivPassword: d.PrivPassword,
		})
	}
	return switches, nil
}

func withDefaults(d, def Device) Device {
	pick := func(v, fallback string) string {
		if v == "" {
			return fallback
		}
		return v
	}
	if d.Port == 0 {
		d.Port = def.Port
	}
	d.Version = pick(pick(d.Version, def.Version), "2c")
	d.Community = pick(d.Community, def.Community)
	d.Username = pick(d.Username, def.Username)
	d.AuthProtocol = pick(d.AuthProtocol, def.AuthProtocol)
	d.AuthPassword = pick(d.AuthPassword, def.AuthPassword)
	d.PrivProtocol = pick(d.PrivProtocol, def.PrivProtocol)
	d.PrivPassword = pick(d.PrivPassword, def.PrivPassword)
	d.Name = pick(d.Name, d.Host)
	return d
}
