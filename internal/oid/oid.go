package oid

import (
	"encoding/json"
	"fmt"
	"os"
)

// Label tables for integer enums. Defaults cover the common values; Load
// replaces them from a JSON file.
var (
	OperState = map[int]string{
		1: "UP",
		2: "DOWN",
		3: "TESTING",
		4: "UNKNOWN",
		5: "DORMANT",
		6: "NOT_PRESENT",
		7: "LOWER_LAYER_DOWN",
	}
	IntTypeNum = map[int]string{
		1:   "other",
		6:   "ethernet-csmacd",
		24:  "softwareLoopback",
		53:  "propVirtual",
		117: "gigabitEthernet",
		131: "tunnel",
		135: "l2vlan",
		136: "l3ipvlan",
		161: "ieee8023adLag",
	}
	Duplex = map[int]string{
		1: "unknown",
		2: "half",
		3: "full",
	}
)

// Load reads the enum label tables from a JSON file. Tables missing from the
// file keep their defaults.
func Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var cfg struct {
		OperState  map[int]string `json:"oper_state"`
		IntTypeNum map[int]string `json:"int_type_num"`
		Duplex     map[int]string `json:"duplex"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if len(cfg.OperState) > 0 {
		OperState = cfg.OperState
	}
	if len(cfg.IntTypeNum) > 0 {
		IntTypeNum = cfg.IntTypeNum
	}
	if len(cfg.Duplex) > 0 {
		Duplex = cfg.Duplex
	}
	return nil
}

// Label returns the name for v in table, or "UNKNOWN(v)".
func Label(table map[int]string, v int) string {
	if s, ok := table[v]; ok {
		return s
	}
	return fmt.Sprintf("UNKNOWN(%d)", v)
}
