package oid

import (
	"encoding/json"
	"fmt"
	"os"
)

const (
	SysDescr     = "1.3.6.1.2.1.1.1.0"
	SysName      = "1.3.6.1.2.1.1.5.0"
	IfOperStatus = "1.3.6.1.2.1.2.2.1.8"
	IfName       = "1.3.6.1.2.1.31.1.1.1.1"
)

// OperState labels IF-MIB ifOperStatus values.
var OperState = map[int]string{
	1: "UP",
	2: "DOWN",
	3: "TESTING",
	4: "UNKNOWN",
	5: "DORMANT",
	6: "NOT_PRESENT",
	7: "LOWER_LAYER_DOWN",
}

// Load replaces the built-in labels with the ones in a JSON file. Values
// missing from the file keep their built-in label.
func Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var cfg struct {
		OperState map[int]string `json:"oper_state"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	for k, v := range cfg.OperState {
		OperState[k] = v
	}
	return nil
}

// OperLabel returns the label for an ifOperStatus value.
func OperLabel(v int) string {
	if s, ok := OperState[v]; ok {
		return s
	}
	return fmt.Sprintf("UNKNOWN(%d)", v)
}
