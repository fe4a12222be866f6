package brocade

import (
	"os"
	"testing"

	"go-fcmap/internal/fabric"
	"go-fcmap/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return string(b)
}

func fabricMap(t *testing.T) *fabric.Map {
	return ParseFabricShow(fixture(t, "fabricshow.txt"))
}

func TestParseSwitchShowSlotPort(t *testing.T) {
	ss := ParseSwitchShow(fixture(t, "switchshow_slot.txt"))
	assert.Equal(t, "DCX_A", ss.Name)
	assert.Equal(t, "128", ss.FID)
	assert.True(t, ss.HeaderFound)
	require.Len(t, ss.Endpoints, 2)

	assert.Equal(t, models.Endpoint{
		WWPN:       "10:00:c4:f5:7c:39:66:e2",
		Vendor:     models.VendorBrocade,
		SwitchName: "DCX_A",
		PortIndex:  "4/12",
		LoginType:  models.LoginLocal,
		LinkSpeed:  "N16",
	}, ss.Endpoints[0])
	assert.Equal(t, "4/15", ss.Endpoints[1].PortIndex)
	assert.Equal(t, "N8", ss.Endpoints[1].LinkSpeed)
}

func TestParseSwitchShowSingleOnlineLine(t *testing.T) {
	text := "switchName: sw1\n" +
		"Index Slot Port Address Media Speed State Proto\n" +
		"================================================\n" +
		`  60   4   12   01f0c0   id    N16   Online   FC  F-Port  10:00:c4:f5:7c:39:66:e2 "PEER"` + "\n"
	ss := ParseSwitchShow(text)
	require.Len(t, ss.Endpoints, 1)
	assert.Equal(t, "4/12", ss.Endpoints[0].PortIndex)
	assert.Equal(t, "10:00:c4:f5:7c:39:66:e2", ss.Endpoints[0].WWPN)
}

func TestParseSwitchShowFlatIndex(t *testing.T) {
	ss := ParseSwitchShow(fixture(t, "switchshow_flat.txt"))
	assert.Equal(t, "sw300", ss.Name)
	assert.Equal(t, "", ss.FID)
	require.Len(t, ss.Endpoints, 1)
	assert.Equal(t, "0", ss.Endpoints[0].PortIndex)
	assert.Equal(t, "50:06:01:60:3e:a0:12:34", ss.Endpoints[0].WWPN)
}

func TestParseSwitchShowNoOnlinePorts(t *testing.T) {
	text := "switchName: sw1\n" +
		"Index Port Address Media Speed State Proto\n" +
		"==========================================\n" +
		"  0   0   010000   id    N8   No_Light    FC\n" +
		"  1   1   010100   --    N8   No_Module   FC\n"
	ss := ParseSwitchShow(text)
	assert.True(t, ss.HeaderFound)
	assert.Empty(t, ss.Endpoints)
}

func TestParseSwitchShowHeaderDrift(t *testing.T) {
	ss := ParseSwitchShow("switchName: sw1\nswitchState: Online\n")
	assert.False(t, ss.HeaderFound)
	assert.Empty(t, ss.Endpoints)
}

func TestParseFabricShow(t *testing.T) {
	fm := fabricMap(t)
	assert.Equal(t, 2, fm.Len())
	sw, err := fm.ResolveDomain("01")
	require.NoError(t, err)
	assert.Equal(t, fabric.SwitchInfo{ID: "fffc01", IP: "10.1.1.11", Name: "DCX_A"}, sw)
	sw, err = fm.ResolveDomain("02")
	require.NoError(t, err)
	assert.Equal(t, fabric.SwitchInfo{ID: "fffc02", IP: "10.1.1.12", Name: "DCX_B"}, sw)

	assert.Equal(t, 0, ParseFabricShow("").Len())
}

func TestParseNSCamShow(t *testing.T) {
	eps, gaps := ParseNSCamShow(fixture(t, "nscamshow.txt"), fabricMap(t))
	require.Len(t, eps, 2)
	assert.Equal(t, 1, gaps)

	assert.Equal(t, models.Endpoint{
		WWPN:             "10:00:00:00:c9:12:34:56",
		Vendor:           models.VendorBrocade,
		SwitchName:       "DCX_B",
		SwitchIP:         "10.1.1.12",
		PortIndex:        "1",
		LoginType:        models.LoginRemote,
		NodeSymbolicName: "Emulex LPe12002 FV2.01A12 DV8.3.7.18",
		LinkSpeed:        "8G",
	}, eps[0])

	assert.Equal(t, "50:06:01:61:3e:a0:12:34", eps[1].WWPN)
	assert.Equal(t, "CLARiiON::::SPA1::FC::::::", eps[1].NodeSymbolicName)
	assert.Equal(t, "16G", eps[1].LinkSpeed)
}

func TestParseNSCamShowEmptyFabricMap(t *testing.T) {
	eps, gaps := ParseNSCamShow(fixture(t, "nscamshow.txt"), &fabric.Map{})
	assert.Empty(t, eps)
	assert.Zero(t, gaps)
}

func TestParseNSCamShowUnknownSwitch(t *testing.T) {
	var fm fabric.Map
	fm.Add(fabric.SwitchInfo{ID: "fffc09", IP: "10.9.9.9", Name: "other"})
	eps, gaps := ParseNSCamShow(fixture(t, "nscamshow.txt"), &fm)
	assert.Empty(t, eps)
	assert.Equal(t, 3, gaps)
}

func TestParseAliShow(t *testing.T) {
	a := ParseAliShow(fixture(t, "alishow.txt"))
	assert.Equal(t, 3, a.Len())
	w, ok := a.WWPN("array_spa1")
	require.True(t, ok)
	assert.Equal(t, "50:06:01:61:3e:a0:12:34", w)
	n, ok := a.Name("10:00:c4:f5:7c:39:66:e2")
	require.True(t, ok)
	assert.Equal(t, "peer", n)
}

func TestParseZoneShow(t *testing.T) {
	a := ParseAliShow(fixture(t, "alishow.txt"))
	z := ParseZoneShow(fixture(t, "zoneshow.txt"), a)

	assert.Equal(t, []string{"z_host1_array", "z_peer"}, z.Names())
	assert.Equal(t, []fabric.Member{
		{Raw: "host1_hba0", Resolved: "10:00:00:00:c9:12:34:56"},
		{Raw: "array_spa1", Resolved: "50:06:01:61:3e:a0:12:34"},
	}, z.Members("z_host1_array"))
	assert.Equal(t, []fabric.Member{
		{Raw: "10:00:c4:f5:7c:39:66:e2", Resolved: "peer"},
		{Raw: "21:00:00:24:ff:4c:aa:01", Resolved: fabric.NA},
	}, z.Members("z_peer"))

	assert.Equal(t, []string{"z_host1_array"}, z.ZonesOf("10:00:00:00:c9:12:34:56", a))
	assert.Equal(t, []string{"z_peer"}, z.ZonesOf("21:00:00:24:ff:4c:aa:01", a))
	assert.Empty(t, z.ZonesOf("50:06:01:60:3e:a0:12:34", a))
}

func TestParseZoneShowEffectiveOnly(t *testing.T) {
	text := "Effective configuration:\n" +
		" cfg:\tprod\n" +
		" zone:\tz1\t10:00:00:00:c9:12:34:56\n" +
		"\t\t50:06:01:61:3e:a0:12:34\n"
	z := ParseZoneShow(text, fabric.NewAliases())
	assert.Equal(t, []string{"z1"}, z.Names())
	assert.Len(t, z.Members("z1"), 2)
}

func TestZonesThroughEitherAliasOfOneWWPN(t *testing.T) {
	a := ParseAliShow(" alias:\thost1_a\t10:00:00:00:c9:12:34:56\n" +
		" alias:\thost1_b\t10:00:00:00:c9:12:34:56\n")
	z := ParseZoneShow("Defined configuration:\n"+
		" zone:\tz_a\thost1_a\n"+
		" zone:\tz_b\thost1_b\n", a)

	eps := []models.Endpoint{{WWPN: "10:00:00:00:c9:12:34:56"}}
	fabric.Annotate(eps, a, z)
	assert.Equal(t, "host1_a", eps[0].AliasName)
	assert.Equal(t, []string{"z_a", "z_b"}, eps[0].Zones)
}

func TestParseFIDs(t *testing.T) {
	fids := ParseFIDs(fixture(t, "configshow_fid.txt"), "Fabric ID: 128\n", "")
	assert.Equal(t, []string{"128", "20"}, fids)
	assert.Empty(t, ParseFIDs("", ""))
}

func TestParsersAreDeterministic(t *testing.T) {
	text := fixture(t, "nscamshow.txt")
	a, _ := ParseNSCamShow(text, fabricMap(t))
	b, _ := ParseNSCamShow(text, fabricMap(t))
	assert.Equal(t, a, b)
	assert.Equal(t, ParseSwitchShow(fixture(t, "switchshow_slot.txt")), ParseSwitchShow(fixture(t, "switchshow_slot.txt")))
}
