// Package brocade discovers endpoints on Brocade FOS switches, one crawl per
// virtual fabric.
package brocade

import (
	"regexp"
	"strings"

	"go-fcmap/internal/fabric"
	"go-fcmap/internal/models"
	"go-fcmap/internal/wwpn"
)

var (
	fidAttr    = regexp.MustCompile(`FID:\s*(\d+)`)
	digits     = regexp.MustCompile(`\d+`)
	speedValue = regexp.MustCompile(`^(?:A?N)?\d+G?$`)
	tableRule  = regexp.MustCompile(`^\s*=+\s*$`)
	dashRule   = regexp.MustCompile(`^\s*-+\s*$`)
	deviceLine = regexp.MustCompile(`^\s*N\s+([0-9a-fA-F]{6});`)
)

// SwitchShow is the parsed result of switchshow.
type SwitchShow struct {
	Name string
	// FID is the logical switch's fabric ID from the LS Attributes line.
	FID string
	// HeaderFound is false when the port table header was not recognized;
	// the output format may have drifted.
	HeaderFound bool
	Endpoints   []models.Endpoint
}

// ParseSwitchShow extracts the switch name and every Online port carrying a
// device WWPN. Ports are "slot/port" when the table has a Slot column, else
// the flat index. Records have LoginType local and no switch IP.
func ParseSwitchShow(text string) SwitchShow {
	var ss SwitchShow
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	hasSlot, speedCol := false, -1
	tableStart := 0
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "switchName:"):
			ss.Name = strings.TrimSpace(strings.TrimPrefix(trimmed, "switchName:"))
		case strings.HasPrefix(trimmed, "LS Attributes:"):
			if m := fidAttr.FindStringSubmatch(trimmed); m != nil {
				ss.FID = m[1]
			}
		case strings.HasPrefix(trimmed, "Index"):
			ss.HeaderFound = true
			cols := strings.Fields(trimmed)
			for j, c := range cols {
				switch c {
				case "Slot":
					hasSlot = true
				case "Speed":
					speedCol = j
				}
			}
		case tableRule.MatchString(line) && tableStart == 0:
			tableStart = i + 1
		}
	}

	for _, line := range lines[tableStart:] {
		if !strings.Contains(line, "Online") || strings.Contains(line, "E-Port") {
			continue
		}
		w, ok := wwpn.Find(line)
		if !ok {
			continue
		}
		fields := strings.Fields(line)
		port := fields[0]
		if hasSlot {
			if len(fields) < 3 {
				continue
			}
			port = fields[1] + "/" + fields[2]
		}
		ep := models.Endpoint{
			WWPN:       w,
			Vendor:     models.VendorBrocade,
			SwitchName: ss.Name,
			PortIndex:  port,
			LoginType:  models.LoginLocal,
		}
		if speedCol >= 0 && speedCol < len(fields) && speedValue.MatchString(fields[speedCol]) {
			ep.LinkSpeed = fields[speedCol]
		}
		ss.Endpoints = append(ss.Endpoints, ep)
	}
	return ss
}

// ParseFabricShow builds the fabric map from fabricshow. Only rows below the
// dash rule with a colon and exactly six columns are used:
//
//	1: fffc01 10:00:00:05:1e:35:b5:a7 10.1.1.11 0.0.0.0 >"sw1"
func ParseFabricShow(text string) *fabric.Map {
	m := &fabric.Map{}
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	start := 0
	for i, line := range lines {
		if dashRule.MatchString(line) {
			start = i + 1
		}
	}
	for _, line := range lines[start:] {
		if !strings.Contains(line, ":") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 6 {
			continue
		}
		m.Add(fabric.SwitchInfo{
			ID:   strings.ToLower(fields[1]),
			IP:   fields[3],
			Name: strings.Trim(fields[5], `>" `),
		})
	}
	return m
}

type remoteEntry struct {
	domain    string
	ep        models.Endpoint
	nodeSymb  string
	portSymb  string
	hasIndex  bool
	hasSpeed  bool
	completed bool
}

// ParseNSCamShow extracts remotely logged-in devices from nscamshow and
// attributes each to its switch through the fabric map. It returns the
// records and the number of entries dropped because their domain was not in
// the map. An empty map yields nothing.
func ParseNSCamShow(text string, fm *fabric.Map) ([]models.Endpoint, int) {
	if fm == nil || fm.Len() == 0 {
		return nil, 0
	}
	var (
		out  []models.Endpoint
		gaps int
		cur  *remoteEntry
	)
	flush := func() {
		if cur == nil || !cur.completed {
			return
		}
		sw, err := fm.ResolveDomain(cur.domain)
		if err != nil {
			gaps++
			return
		}
		cur.ep.SwitchName = sw.Name
		cur.ep.SwitchIP = sw.IP
		cur.ep.NodeSymbolicName = cur.nodeSymb
		if cur.ep.NodeSymbolicName == "" {
			cur.ep.NodeSymbolicName = cur.portSymb
		}
		out = append(out, cur.ep)
	}

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if m := deviceLine.FindStringSubmatch(line); m != nil {
			flush()
			cur = nil
			w, ok := wwpn.Find(line)
			if !ok {
				continue
			}
			cur = &remoteEntry{
				domain: strings.ToLower(m[1][:2]),
				ep: models.Endpoint{
					WWPN:      w,
					Vendor:    models.VendorBrocade,
					LoginType: models.LoginRemote,
				},
			}
			continue
		}
		if cur == nil || cur.completed {
			continue
		}
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "NodeSymb:"):
			cur.nodeSymb = symbolic(strings.TrimPrefix(trimmed, "NodeSymb:"))
		case strings.HasPrefix(trimmed, "PortSymb:"):
			cur.portSymb = symbolic(strings.TrimPrefix(trimmed, "PortSymb:"))
		case strings.HasPrefix(trimmed, "Port Index:"):
			cur.ep.PortIndex = strings.TrimSpace(strings.TrimPrefix(trimmed, "Port Index:"))
			cur.hasIndex = true
		case strings.HasPrefix(trimmed, "Device link speed:"):
			cur.ep.LinkSpeed = strings.TrimSpace(strings.TrimPrefix(trimmed, "Device link speed:"))
			cur.hasSpeed = true
		}
		cur.completed = cur.hasIndex && cur.hasSpeed
	}
	flush()
	return out, gaps
}

// symbolic strips the length prefix and quotes from `[32] "name"`.
func symbolic(v string) string {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "[") {
		if i := strings.Index(v, "]"); i >= 0 {
			v = strings.TrimSpace(v[i+1:])
		}
	}
	return strings.Trim(v, `"`)
}

// ParseAliShow parses alishow (or cfgshow) alias definitions. Each alias
// takes the first WWPN on its header line or the lines after it.
func ParseAliShow(text string) *fabric.Aliases {
	aliases := fabric.NewAliases()
	pending := ""
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if isHeader(trimmed) {
			pending = ""
			if !strings.HasPrefix(trimmed, "alias:") {
				continue
			}
			fields := strings.Fields(trimmed)
			if len(fields) < 2 {
				continue
			}
			name := fields[1]
			if w, ok := wwpn.Find(strings.Join(fields[2:], " ")); ok {
				aliases.Add(name, w)
				continue
			}
			pending = name
			continue
		}
		if pending == "" {
			continue
		}
		if w, ok := wwpn.Find(trimmed); ok {
			aliases.Add(pending, w)
			pending = ""
		}
	}
	return aliases
}

// ParseZoneShow parses zoneshow output. A zone's members are the
// ';'-separated tokens on its header line and following lines up to the next
// header. The effective configuration repeats defined zones with aliases
// expanded, so it is only read when no defined configuration is present.
func ParseZoneShow(text string, aliases *fabric.Aliases) *fabric.Zones {
	zones := fabric.NewZones()
	current := ""
	sawDefined := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "Defined configuration"):
			sawDefined = true
			current = ""
			continue
		case strings.HasPrefix(trimmed, "Effective configuration"):
			if sawDefined {
				return zones
			}
			current = ""
			continue
		case isHeader(trimmed):
			current = ""
			if !strings.HasPrefix(trimmed, "zone:") {
				continue
			}
			fields := strings.Fields(trimmed)
			if len(fields) < 2 {
				continue
			}
			current = strings.TrimSuffix(fields[1], ";")
			zones.Add(current)
			trimmed = strings.Join(fields[2:], " ")
		}
		if current == "" {
			continue
		}
		for _, tok := range strings.FieldsFunc(trimmed, func(r rune) bool {
			return r == ';' || r == ' ' || r == '\t'
		}) {
			member := tok
			if w, ok := wwpn.Canonical(tok); ok {
				member = w
			}
			zones.Add(current, fabric.Member{Raw: member, Resolved: aliases.Resolve(member)})
		}
	}
	return zones
}

func isHeader(line string) bool {
	for _, h := range []string{"zone:", "alias:", "cfg:"} {
		if strings.HasPrefix(line, h) {
			return true
		}
	}
	return false
}

// ParseFIDs extracts every fabric ID number from configshow output,
// de-duplicated in first-seen order across all outputs.
func ParseFIDs(outputs ...string) []string {
	var fids []string
	seen := map[string]bool{}
	for _, out := range outputs {
		for _, id := range digits.FindAllString(out, -1) {
			if !seen[id] {
				seen[id] = true
				fids = append(fids, id)
			}
		}
	}
	return fids
}
