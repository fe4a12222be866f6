// Package fabric holds the per-crawl correlation tables shared by both
// vendors: the fabric switch map, the alias table and the zone table, plus
// the functions that annotate endpoint records from them.
//
// Every table is a plain value built fresh for one crawl scope and passed
// explicitly into the functions that need it.
package fabric

import (
	"errors"
	"sort"
	"strings"

	"go-fcmap/internal/models"
	"go-fcmap/internal/wwpn"
)

var (
	// ErrParseEmpty marks a source whose text did not match the expected
	// structure. It is treated as an empty table.
	ErrParseEmpty = errors.New("parse: no recognizable records")
	// ErrCorrelationGap marks a remote entry whose switch could not be
	// resolved against the fabric map.
	ErrCorrelationGap = errors.New("correlation: switch identifier not in fabric map")
)

// NA is the display value for a zone member that resolves to nothing.
const NA = "NA"

// SwitchInfo identifies one physical switch in a fabric.
type SwitchInfo struct {
	ID   string
	IP   string
	Name string
}

// Map is the fabric topology of one virtual fabric, in fabricshow order.
type Map struct {
	switches []SwitchInfo
}

// Add appends a switch; later duplicates of an ID are ignored.
func (m *Map) Add(s SwitchInfo) {
	for _, sw := range m.switches {
		if sw.ID == s.ID {
			return
		}
	}
	m.switches = append(m.switches, s)
}

func (m *Map) Len() int { return len(m.switches) }

// ResolveDomain finds the switch whose identifier ends with domain.
// The first match in fabric order wins.
func (m *Map) ResolveDomain(domain string) (SwitchInfo, error) {
	domain = strings.ToLower(domain)
	if domain == "" {
		return SwitchInfo{}, ErrCorrelationGap
	}
	for _, sw := range m.switches {
		if strings.HasSuffix(strings.ToLower(sw.ID), domain) {
			return sw, nil
		}
	}
	return SwitchInfo{}, ErrCorrelationGap
}

// Aliases is a bidirectional alias name <-> WWPN table.
type Aliases struct {
	byName map[string]string
	byWWPN map[string]string
}

func NewAliases() *Aliases {
	return &Aliases{byName: map[string]string{}, byWWPN: map[string]string{}}
}

// Add records name -> w. The first alias seen for a WWPN stays its reverse
// mapping.
func (a *Aliases) Add(name, w string) bool {
	c, ok := wwpn.Canonical(w)
	if !ok || name == "" {
		return false
	}
	a.byName[name] = c
	if _, exists := a.byWWPN[c]; !exists {
		a.byWWPN[c] = name
	}
	return true
}

func (a *Aliases) Len() int {
	if a == nil {
		return 0
	}
	return len(a.byName)
}

// WWPN returns the WWPN for an alias name.
func (a *Aliases) WWPN(name string) (string, bool) {
	if a == nil {
		return "", false
	}
	w, ok := a.byName[name]
	return w, ok
}

// Name returns the alias name for a WWPN.
func (a *Aliases) Name(w string) (string, bool) {
	if a == nil {
		return "", false
	}
	c, ok := wwpn.Canonical(w)
	if !ok {
		return "", false
	}
	n, ok := a.byWWPN[c]
	return n, ok
}

// Resolve maps a zone member to its counterpart: a WWPN to its alias, an
// alias to its WWPN. Unknown members resolve to NA.
func (a *Aliases) Resolve(member string) string {
	if wwpn.Valid(member) {
		if n, ok := a.Name(member); ok {
			return n
		}
		return NA
	}
	if w, ok := a.WWPN(member); ok {
		return w
	}
	return NA
}

// Member is one zone member descriptor.
type Member struct {
	Raw      string
	Resolved string
}

func (m Member) String() string {
	return m.Raw + " => " + m.Resolved
}

// Zones maps zone name to its ordered members.
type Zones struct {
	order   []string
	members map[string][]Member
	scopes  map[string][]string
}

func NewZones() *Zones {
	return &Zones{members: map[string][]Member{}, scopes: map[string][]string{}}
}

// AddScope records that zone name is defined in scope. A name defined in
// several scopes keeps one merged member list and every scope, in order.
func (z *Zones) AddScope(name, scope string) {
	if name == "" || scope == "" {
		return
	}
	for _, s := range z.scopes[name] {
		if s == scope {
			return
		}
	}
	z.scopes[name] = append(z.scopes[name], scope)
}

// Scope returns the comma-joined scopes recorded for a zone, or "".
func (z *Zones) Scope(name string) string {
	if z == nil {
		return ""
	}
	return strings.Join(z.scopes[name], ",")
}

// Add appends members to a zone, creating it if needed. Repeated members
// are kept once.
func (z *Zones) Add(name string, members ...Member) {
	if name == "" {
		return
	}
	existing, ok := z.members[name]
	if !ok {
		z.order = append(z.order, name)
	}
	for _, m := range members {
		dup := false
		for _, e := range existing {
			if e.Raw == m.Raw {
				dup = true
				break
			}
		}
		if !dup {
			existing = append(existing, m)
		}
	}
	z.members[name] = existing
}

func (z *Zones) Len() int {
	if z == nil {
		return 0
	}
	return len(z.order)
}

func (z *Zones) Names() []string {
	if z == nil {
		return nil
	}
	return append([]string(nil), z.order...)
}

func (z *Zones) Members(name string) []Member {
	if z == nil {
		return nil
	}
	return append([]Member(nil), z.members[name]...)
}

// ZonesOf returns the sorted names of zones listing w directly or through
// any alias that maps to it. The table is scanned on every call.
func (z *Zones) ZonesOf(w string, aliases *Aliases) []string {
	if z == nil {
		return nil
	}
	c, ok := wwpn.Canonical(w)
	if !ok {
		return nil
	}

	var out []string
	for _, name := range z.order {
		for _, m := range z.members[name] {
			if mc, ok := wwpn.Canonical(m.Raw); ok && mc == c {
				out = append(out, name)
				break
			}
			if aw, ok := aliases.WWPN(m.Raw); ok && aw == c {
				out = append(out, name)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// Annotate fills alias name and zone membership on every endpoint in place.
func Annotate(eps []models.Endpoint, aliases *Aliases, zones *Zones) {
	for i := range eps {
		if n, ok := aliases.Name(eps[i].WWPN); ok {
			eps[i].AliasName = n
		}
		eps[i].Zones = zones.ZonesOf(eps[i].WWPN, aliases)
		if eps[i].Zones == nil {
			eps[i].Zones = []string{}
		}
	}
}

// ZoneRecords converts the table into storable zone records. A zone with
// recorded scopes uses them instead of scope.
func ZoneRecords(zones *Zones, vendor, switchIP, scope string) []models.Zone {
	var out []models.Zone
	for _, name := range zones.Names() {
		zoneScope := scope
		if s := zones.Scope(name); s != "" {
			zoneScope = s
		}
		members := zones.Members(name)
		rendered := make([]string, 0, len(members))
		for _, m := range members {
			rendered = append(rendered, m.String())
		}
		out = append(out, models.Zone{
			ZoneName:    name,
			Vendor:      vendor,
			SwitchIP:    switchIP,
			FabricScope: zoneScope,
			Members:     rendered,
		})
	}
	return out
}
