package portname

import (
	"regexp"
	"strings"
)

type Rule struct {
	Regex   *regexp.Regexp
	Handler func(match []string) string
}

var Rules = []Rule{
	// Cisco MDS interfaces: "fc1/12" → "1/12"
	{
		regexp.MustCompile(`(?i)^(?:fc|vfc)(\d+/\d+)$`),
		func(m []string) string { return m[1] },
	},
	// Brocade SNMP names: "FC port 0/5" → "0/5"
	{
		regexp.MustCompile(`(?i)FC\s*port\s*(\d+/\d+)`),
		func(m []string) string { return m[1] },
	},
	// Port channels: "port-channel 3" → "pc3"
	{
		regexp.MustCompile(`(?i)port-channel\s*(\d+)`),
		func(m []string) string { return "pc" + m[1] },
	},
	// Generic "Port16" or "Port: 16"
	{
		regexp.MustCompile(`(?i)Port\s*:?\s*(\d+)$`),
		func(m []string) string { return m[1] },
	},
	// Bare slot/port or flat index
	{
		regexp.MustCompile(`^(\d+(?:/\d+)?)$`),
		func(m []string) string { return m[1] },
	},
}

// Normalize extracts a short, consistent label for display on port boxes.
func Normalize(name string) string {
	name = strings.TrimSpace(name)
	for _, rule := range Rules {
		if match := rule.Regex.FindStringSubmatch(name); len(match) > 1 {
			return rule.Handler(match)
		}
	}
	return name
}
