package models

import "time"

const (
	VendorCisco   = "cisco"
	VendorBrocade = "brocade"

	LoginLocal  = "local"
	LoginRemote = "remote"
)

// Endpoint is one observed device attachment, stored once per WWPN.
type Endpoint struct {
	ID               uint      `gorm:"primaryKey" json:"-" bson:"-" yaml:"-"`
	WWPN             string    `gorm:"uniqueIndex" json:"wwpn" bson:"wwpn" yaml:"wwpn"`
	Vendor           string    `json:"vendor" bson:"vendor" yaml:"vendor"`
	SwitchName       string    `json:"switch_name" bson:"switch_name" yaml:"switch_name"`
	SwitchIP         string    `gorm:"index" json:"switch_ip" bson:"switch_ip" yaml:"switch_ip"`
	FabricScope      string    `json:"fabric_scope" bson:"fabric_scope" yaml:"fabric_scope"`
	PortIndex        string    `json:"port_index" bson:"port_index" yaml:"port_index"`
	LoginType        string    `json:"login_type" bson:"login_type" yaml:"login_type"`
	AliasName        string    `json:"alias_name,omitempty" bson:"alias_name,omitempty" yaml:"alias_name,omitempty"`
	Zones            []string  `gorm:"serializer:json" json:"zones" bson:"zones" yaml:"zones"`
	NodeSymbolicName string    `json:"node_symbolic_name,omitempty" bson:"node_symbolic_name,omitempty" yaml:"node_symbolic_name,omitempty"`
	LinkSpeed        string    `json:"link_speed,omitempty" bson:"link_speed,omitempty" yaml:"link_speed,omitempty"`
	Timestamp        time.Time `json:"timestamp" bson:"timestamp" yaml:"timestamp"`
}

// Zone is a zone definition as seen on one fabric, stored once per zone name.
type Zone struct {
	ID          uint      `gorm:"primaryKey" json:"-" bson:"-" yaml:"-"`
	ZoneName    string    `gorm:"uniqueIndex" json:"zone_name" bson:"zone_name" yaml:"zone_name"`
	Vendor      string    `json:"vendor" bson:"vendor" yaml:"vendor"`
	SwitchIP    string    `json:"switch_ip" bson:"switch_ip" yaml:"switch_ip"`
	FabricScope string    `json:"fabric_scope" bson:"fabric_scope" yaml:"fabric_scope"`
	Members     []string  `gorm:"serializer:json" json:"members" bson:"members" yaml:"members"`
	Timestamp   time.Time `json:"timestamp" bson:"timestamp" yaml:"timestamp"`
}

// Switch is the SNMP view of a configured switch.
type Switch struct {
	ID        uint `gorm:"primaryKey"`
	Name      string
	IPAddress string `gorm:"uniqueIndex"`
	Vendor    string
	Descr     string
	PortCount int
	PolledAt  time.Time
}

type PortStatus struct {
	ID            uint `gorm:"primaryKey"`
	SwitchID      uint `gorm:"index"`
	PortIndex     int
	PortName      string
	Status        string
	StatusChanges int
}
