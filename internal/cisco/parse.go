// Package cisco discovers endpoints on Cisco MDS style switches from the
// fabric name server database.
package cisco

import (
	"regexp"
	"strings"

	"go-fcmap/internal/fabric"
	"go-fcmap/internal/models"
	"go-fcmap/internal/wwpn"
)

var (
	ruleLine = regexp.MustCompile(`^-{24,}\s*$`)
	vsanID   = regexp.MustCompile(`^VSAN:\s*(\d+)`)
	ipInName = regexp.MustCompile(`^(.*?)\s*\(([^()]*)\)\s*$`)
	zoneHead = regexp.MustCompile(`^zone name (\S+)(?:\s+vsan\s+(\d+))?`)
)

// splitBlocks cuts fcns output into per-entry blocks. A block starts at a
// dash rule immediately followed by a VSAN header.
func splitBlocks(text string) [][]string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	var blocks [][]string
	var cur []string
	for i, line := range lines {
		if ruleLine.MatchString(line) && i+1 < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[i+1]), "VSAN") {
			if cur != nil {
				blocks = append(blocks, cur)
			}
			cur = []string{}
			continue
		}
		if cur != nil {
			cur = append(cur, line)
		}
	}
	if cur != nil {
		blocks = append(blocks, cur)
	}
	return blocks
}

// value returns the text after the first colon of a "label   :value" line.
func value(line string) string {
	if i := strings.Index(line, ":"); i >= 0 {
		return strings.TrimSpace(line[i+1:])
	}
	return ""
}

// ParseFCNS parses "show fcns database detail" output. Blocks without a
// port WWN are skipped. Login type is left for the caller to decide.
func ParseFCNS(text string) []models.Endpoint {
	var out []models.Endpoint
	for _, block := range splitBlocks(text) {
		if ep, ok := parseBlock(block); ok {
			out = append(out, ep)
		}
	}
	return out
}

func parseBlock(lines []string) (models.Endpoint, bool) {
	ep := models.Endpoint{Vendor: models.VendorCisco}
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, "VSAN"):
			if m := vsanID.FindStringSubmatch(line); m != nil {
				ep.FabricScope = m[1]
			}
		case strings.HasPrefix(line, "port-wwn"):
			w, ok := wwpn.Find(value(line))
			if !ok {
				return ep, false
			}
			ep.WWPN = w
		case strings.HasPrefix(line, "connected interface"):
			ep.PortIndex = value(line)
		case strings.HasPrefix(line, "switch name"):
			ep.SwitchName, ep.SwitchIP = splitSwitch(value(line))
		case strings.HasPrefix(line, "symbolic-node-name"):
			ep.NodeSymbolicName = value(line)
		case strings.HasPrefix(line, "port-speed"), strings.HasPrefix(line, "link-speed"):
			ep.LinkSpeed = value(line)
		}
	}
	return ep, ep.WWPN != ""
}

// splitSwitch separates "mds-a (10.1.1.1)" into name and IP. Without the
// parenthesized part the IP is empty.
func splitSwitch(v string) (name, ip string) {
	if m := ipInName.FindStringSubmatch(v); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	return strings.TrimSpace(v), ""
}

// ParseDeviceAliases parses "show device-alias database" output.
func ParseDeviceAliases(text string) *fabric.Aliases {
	aliases := fabric.NewAliases()
	for _, raw := range strings.Split(text, "\n") {
		fields := strings.Fields(raw)
		// device-alias name <name> pwwn <wwpn>
		for i := 0; i+1 < len(fields); i++ {
			if fields[i] != "name" || i+3 >= len(fields) || fields[i+2] != "pwwn" {
				continue
			}
			aliases.Add(fields[i+1], fields[i+3])
			break
		}
	}
	return aliases
}

// ParseZones parses "show zone" output. Members are pwwn entries or
// device-alias references, each resolved against aliases. The VSAN of each
// zone header is kept as the zone's scope; a name repeated in another VSAN
// merges into the same zone.
func ParseZones(text string, aliases *fabric.Aliases) *fabric.Zones {
	zones := fabric.NewZones()
	current := ""
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "*"))
		switch {
		case strings.HasPrefix(line, "zone name"):
			current = ""
			if m := zoneHead.FindStringSubmatch(line); m != nil {
				current = m[1]
				zones.Add(current)
				zones.AddScope(current, m[2])
			}
		case strings.HasPrefix(line, "zoneset name"):
			current = ""
		case current == "":
		case strings.HasPrefix(line, "device-alias"):
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				zones.Add(current, fabric.Member{Raw: fields[1], Resolved: aliases.Resolve(fields[1])})
			}
		default:
			if w, ok := wwpn.Find(line); ok && strings.Contains(line, "pwwn") {
				zones.Add(current, fabric.Member{Raw: w, Resolved: aliases.Resolve(w)})
			}
		}
	}
	return zones
}
