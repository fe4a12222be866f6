package brocade

import (
	"context"
	"testing"

	"go-fcmap/internal/crawler"
	"go-fcmap/internal/gateway"
	"go-fcmap/internal/gateway/gatewaytest"
	"go-fcmap/internal/models"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const host = "10.1.1.11"

func scopedReplies(t *testing.T, fid string) map[string]string {
	return map[string]string{
		Scoped(fid, cmdSwitchShow): fixture(t, "switchshow_slot.txt"),
		Scoped(fid, cmdFabricShow): fixture(t, "fabricshow.txt"),
		Scoped(fid, cmdNSCamShow):  fixture(t, "nscamshow.txt"),
		Scoped(fid, cmdAliShow):    fixture(t, "alishow.txt"),
		Scoped(fid, cmdZoneShow):   fixture(t, "zoneshow.txt"),
	}
}

func target(t *testing.T, gw *gatewaytest.Gateway) (crawler.Target, *test.Hook) {
	t.Helper()
	sess, err := gw.Connect(context.Background(), gateway.Target{Host: host})
	require.NoError(t, err)
	log, hook := test.NewNullLogger()
	return crawler.Target{
		Switch:  crawler.Switch{IP: host, Vendor: models.VendorBrocade},
		Session: sess,
		Log:     log,
	}, hook
}

func TestScoped(t *testing.T) {
	assert.Equal(t, "switchshow", Scoped("", "switchshow"))
	assert.Equal(t, `fosexec --fid 128 -cmd "switchshow"`, Scoped("128", "switchshow"))
}

func TestEnumerateUnionsBothCommands(t *testing.T) {
	gw := gatewaytest.New()
	gw.Script(host, map[string]string{
		fidCommands[0]: fixture(t, "configshow_fid.txt"),
		fidCommands[1]: "Fabric ID: 128\nFabric ID: 30\n",
	})
	tg, _ := target(t, gw)
	assert.Equal(t, []string{"128", "20", "30"}, New().Enumerate(context.Background(), tg))
}

func TestEnumerateWithoutVirtualFabrics(t *testing.T) {
	gw := gatewaytest.New()
	gw.Script(host, nil)
	tg, _ := target(t, gw)
	assert.Equal(t, []string{""}, New().Enumerate(context.Background(), tg))
}

func TestCrawlScope(t *testing.T) {
	gw := gatewaytest.New()
	gw.Script(host, scopedReplies(t, "128"))
	tg, _ := target(t, gw)

	res := New().CrawlScope(context.Background(), tg, "128")
	require.Len(t, res.Endpoints, 4)

	peer := res.Endpoints[0]
	assert.Equal(t, "10:00:c4:f5:7c:39:66:e2", peer.WWPN)
	assert.Equal(t, models.LoginLocal, peer.LoginType)
	assert.Equal(t, host, peer.SwitchIP)
	assert.Equal(t, "DCX_A", peer.SwitchName)
	assert.Equal(t, "128", peer.FabricScope)
	assert.Equal(t, "peer", peer.AliasName)
	assert.Equal(t, []string{"z_peer"}, peer.Zones)

	host1 := res.Endpoints[2]
	assert.Equal(t, "10:00:00:00:c9:12:34:56", host1.WWPN)
	assert.Equal(t, models.LoginRemote, host1.LoginType)
	assert.Equal(t, "10.1.1.12", host1.SwitchIP)
	assert.Equal(t, "host1_hba0", host1.AliasName)
	assert.Equal(t, []string{"z_host1_array"}, host1.Zones)

	require.Len(t, res.Zones, 2)
	assert.Equal(t, "128", res.Zones[0].FabricScope)
}

func TestCrawlScopeDefaultFabricTakesFIDFromSwitchShow(t *testing.T) {
	gw := gatewaytest.New()
	gw.Script(host, scopedReplies(t, ""))
	tg, _ := target(t, gw)

	res := New().CrawlScope(context.Background(), tg, "")
	require.NotEmpty(t, res.Endpoints)
	for _, ep := range res.Endpoints {
		assert.Equal(t, "128", ep.FabricScope)
	}
}

func TestCrawlScopeDegradesMissingSources(t *testing.T) {
	gw := gatewaytest.New()
	gw.Script(host, map[string]string{
		Scoped("", cmdSwitchShow): fixture(t, "switchshow_flat.txt"),
		Scoped("", cmdFabricShow): "rbac permission denied\n",
		Scoped("", cmdNSCamShow):  fixture(t, "nscamshow.txt"),
	})
	tg, hook := target(t, gw)

	res := New().CrawlScope(context.Background(), tg, "")
	require.Len(t, res.Endpoints, 1)
	assert.Equal(t, models.LoginLocal, res.Endpoints[0].LoginType)
	assert.Empty(t, res.Endpoints[0].Zones)
	assert.Empty(t, res.Zones)
	assert.NotEmpty(t, hook.AllEntries())
}
