package fabric

import (
	"testing"

	"go-fcmap/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAliases() *Aliases {
	a := NewAliases()
	a.Add("host1_hba0", "10:00:00:00:C9:12:34:56")
	a.Add("array_spa0", "50:06:01:60:3e:a0:12:34")
	return a
}

func TestMapResolveDomain(t *testing.T) {
	var m Map
	m.Add(SwitchInfo{ID: "fffc01", IP: "10.1.1.11", Name: "sw1"})
	m.Add(SwitchInfo{ID: "fffc02", IP: "10.1.1.12", Name: "sw2"})
	m.Add(SwitchInfo{ID: "fffc02", IP: "10.9.9.9", Name: "dup"})

	sw, err := m.ResolveDomain("02")
	require.NoError(t, err)
	assert.Equal(t, "sw2", sw.Name)
	assert.Equal(t, 2, m.Len())

	_, err = m.ResolveDomain("7a")
	assert.ErrorIs(t, err, ErrCorrelationGap)

	var empty Map
	_, err = empty.ResolveDomain("01")
	assert.ErrorIs(t, err, ErrCorrelationGap)
}

func TestAliasesBidirectional(t *testing.T) {
	a := testAliases()

	w, ok := a.WWPN("host1_hba0")
	require.True(t, ok)
	assert.Equal(t, "10:00:00:00:c9:12:34:56", w)

	n, ok := a.Name("10:00:00:00:c9:12:34:56")
	require.True(t, ok)
	assert.Equal(t, "host1_hba0", n)

	assert.False(t, a.Add("bad", "not-a-wwpn"))
	assert.Equal(t, "host1_hba0", a.Resolve("10:00:00:00:c9:12:34:56"))
	assert.Equal(t, "50:06:01:60:3e:a0:12:34", a.Resolve("array_spa0"))
	assert.Equal(t, NA, a.Resolve("21:00:00:00:00:00:00:01"))
	assert.Equal(t, NA, a.Resolve("unknown_alias"))
}

func TestZonesOfDirectAndViaAlias(t *testing.T) {
	a := testAliases()
	z := NewZones()
	z.Add("z_direct", Member{Raw: "10:00:00:00:c9:12:34:56", Resolved: "host1_hba0"})
	z.Add("z_alias", Member{Raw: "host1_hba0", Resolved: "10:00:00:00:c9:12:34:56"}, Member{Raw: "array_spa0"})
	z.Add("z_other", Member{Raw: "array_spa0"})

	assert.Equal(t, []string{"z_alias", "z_direct"}, z.ZonesOf("10:00:00:00:C9:12:34:56", a))
	assert.Equal(t, []string{"z_alias", "z_other"}, z.ZonesOf("50:06:01:60:3e:a0:12:34", a))
	assert.Empty(t, z.ZonesOf("21:00:00:00:00:00:00:01", a))
}

func TestZonesAddDeduplicates(t *testing.T) {
	z := NewZones()
	z.Add("z1", Member{Raw: "a"})
	z.Add("z1", Member{Raw: "a"}, Member{Raw: "b"})
	assert.Len(t, z.Members("z1"), 2)
	assert.Equal(t, []string{"z1"}, z.Names())
}

func TestAnnotate(t *testing.T) {
	a := testAliases()
	z := NewZones()
	z.Add("z1", Member{Raw: "host1_hba0"})

	eps := []models.Endpoint{
		{WWPN: "10:00:00:00:c9:12:34:56"},
		{WWPN: "21:00:00:00:00:00:00:01"},
	}
	Annotate(eps, a, z)

	assert.Equal(t, "host1_hba0", eps[0].AliasName)
	assert.Equal(t, []string{"z1"}, eps[0].Zones)
	assert.Equal(t, "", eps[1].AliasName)
	assert.Equal(t, []string{}, eps[1].Zones)
}

func TestZoneRecords(t *testing.T) {
	z := NewZones()
	z.Add("z1", Member{Raw: "host1_hba0", Resolved: "10:00:00:00:c9:12:34:56"})
	recs := ZoneRecords(z, models.VendorBrocade, "10.0.0.1", "128")
	require.Len(t, recs, 1)
	assert.Equal(t, []string{"host1_hba0 => 10:00:00:00:c9:12:34:56"}, recs[0].Members)
	assert.Equal(t, "128", recs[0].FabricScope)
}

func TestZonesOfSecondAliasForSameWWPN(t *testing.T) {
	a := NewAliases()
	a.Add("host1_a", "10:00:00:00:c9:12:34:56")
	a.Add("host1_b", "10:00:00:00:c9:12:34:56")
	z := NewZones()
	z.Add("z_a", Member{Raw: "host1_a"})
	z.Add("z_b", Member{Raw: "host1_b"})

	assert.Equal(t, []string{"z_a", "z_b"}, z.ZonesOf("10:00:00:00:c9:12:34:56", a))
}

func TestZoneRecordsUsesRecordedScopes(t *testing.T) {
	z := NewZones()
	z.Add("z_shared", Member{Raw: "a"})
	z.AddScope("z_shared", "10")
	z.Add("z_shared", Member{Raw: "b"})
	z.AddScope("z_shared", "20")
	z.AddScope("z_shared", "10")
	z.Add("z_plain", Member{Raw: "c"})

	recs := ZoneRecords(z, models.VendorCisco, "10.0.0.1", "")
	require.Len(t, recs, 2)
	assert.Equal(t, "z_shared", recs[0].ZoneName)
	assert.Equal(t, "10,20", recs[0].FabricScope)
	assert.Len(t, recs[0].Members, 2)
	assert.Equal(t, "", recs[1].FabricScope)
}
