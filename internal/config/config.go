// Package config loads the crawler configuration from YAML, the environment
// and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go-fcmap/internal/crawler"
	"go-fcmap/internal/models"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "FCMAP"

type Config struct {
	Web      WebConfig      `mapstructure:"web"`
	Poll     PollConfig     `mapstructure:"poll"`
	Store    StoreConfig    `mapstructure:"store"`
	Log      LogConfig      `mapstructure:"log"`
	SNMP     SNMPConfig     `mapstructure:"snmp"`
	Switches []SwitchConfig `mapstructure:"switches"`
}

type WebConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr is the listen address.
func (w WebConfig) Addr() string {
	return fmt.Sprintf("%s:%d", w.Host, w.Port)
}

type PollConfig struct {
	Interval            time.Duration `mapstructure:"interval"`
	ConnectTimeout      time.Duration `mapstructure:"connect_timeout"`
	CommandTimeout      time.Duration `mapstructure:"command_timeout"`
	MaxSessions         int           `mapstructure:"max_sessions"`
	TimezoneOffsetHours int           `mapstructure:"timezone_offset_hours"`
}

// Location is the fixed civic offset used for record timestamps.
func (p PollConfig) Location() *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", p.TimezoneOffsetHours), p.TimezoneOffsetHours*3600)
}

type StoreConfig struct {
	Driver string      `mapstructure:"driver"`
	Path   string      `mapstructure:"path"`
	Mongo  MongoConfig `mapstructure:"mongo"`
}

type MongoConfig struct {
	URI       string `mapstructure:"uri"`
	Database  string `mapstructure:"database"`
	Endpoints string `mapstructure:"endpoints"`
	Zones     string `mapstructure:"zones"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
	Caller     bool   `mapstructure:"caller"`
}

type SNMPConfig struct {
	OIDLabels string        `mapstructure:"oid_labels"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Retries   int           `mapstructure:"retries"`
}

type SwitchConfig struct {
	IP            string `mapstructure:"ip"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	Vendor        string `mapstructure:"vendor"`
	Protocol      string `mapstructure:"protocol"`
	Port          int    `mapstructure:"port"`
	SNMPCommunity string `mapstructure:"snmp_community"`
}

// Load reads the configuration. An explicit path must exist; without one,
// config.yaml is searched in ./configs and the working directory and may
// be absent. FCMAP_* variables override file values.
func Load(path string) (*Config, error) {
	// Load .env if exists
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("web.host", "0.0.0.0")
	v.SetDefault("web.port", 8080)

	v.SetDefault("poll.interval", "10m")
	v.SetDefault("poll.connect_timeout", "20s")
	v.SetDefault("poll.command_timeout", "60s")
	v.SetDefault("poll.max_sessions", 0)
	v.SetDefault("poll.timezone_offset_hours", 8)

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "fcmap.db")
	v.SetDefault("store.mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("store.mongo.database", "fcmap")
	v.SetDefault("store.mongo.endpoints", "wwpn")
	v.SetDefault("store.mongo.zones", "zone")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file", "logs/fcmap.log")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("log.caller", false)

	v.SetDefault("snmp.oid_labels", "")
	v.SetDefault("snmp.timeout", "5s")
	v.SetDefault("snmp.retries", 1)
}

// Validate normalizes vendor and protocol names and rejects entries the
// crawler cannot serve.
func (c *Config) Validate() error {
	if c.Poll.Interval <= 0 {
		return fmt.Errorf("poll.interval must be positive")
	}
	if c.Poll.MaxSessions < 0 {
		return fmt.Errorf("poll.max_sessions must not be negative")
	}
	if h := c.Poll.TimezoneOffsetHours; h < -12 || h > 14 {
		return fmt.Errorf("poll.timezone_offset_hours out of range: %d", h)
	}
	switch c.Store.Driver {
	case "sqlite", "mongo":
	default:
		return fmt.Errorf("unsupported store.driver: %q", c.Store.Driver)
	}

	seen := make(map[string]bool, len(c.Switches))
	for i := range c.Switches {
		sw := &c.Switches[i]
		sw.IP = strings.TrimSpace(sw.IP)
		sw.Vendor = strings.ToLower(strings.TrimSpace(sw.Vendor))
		sw.Protocol = strings.ToLower(strings.TrimSpace(sw.Protocol))
		if sw.Protocol == "" {
			sw.Protocol = crawler.ProtocolSSH
		}

		if sw.IP == "" {
			return fmt.Errorf("switches[%d]: ip is required", i)
		}
		if seen[sw.IP] {
			return fmt.Errorf("switches[%d]: duplicate ip %s", i, sw.IP)
		}
		seen[sw.IP] = true
		switch sw.Vendor {
		case models.VendorCisco, models.VendorBrocade:
		default:
			return fmt.Errorf("switches[%d]: unsupported vendor %q", i, sw.Vendor)
		}
		switch sw.Protocol {
		case crawler.ProtocolSSH, crawler.ProtocolTelnet:
		default:
			return fmt.Errorf("switches[%d]: unsupported protocol %q", i, sw.Protocol)
		}
		if sw.Port < 0 || sw.Port > 65535 {
			return fmt.Errorf("switches[%d]: invalid port %d", i, sw.Port)
		}
	}
	return nil
}

// CrawlSwitches returns the switch list in configuration order.
func (c *Config) CrawlSwitches() []crawler.Switch {
	out := make([]crawler.Switch, 0, len(c.Switches))
	for _, sw := range c.Switches {
		out = append(out, crawler.Switch{
			IP:        sw.IP,
			Username:  sw.Username,
			Password:  sw.Password,
			Vendor:    sw.Vendor,
			Protocol:  sw.Protocol,
			Port:      sw.Port,
			Community: sw.SNMPCommunity,
		})
	}
	return out
}
