package cisco

import (
	"context"
	"strings"

	"go-fcmap/internal/crawler"
	"go-fcmap/internal/fabric"
	"go-fcmap/internal/models"

	"github.com/sirupsen/logrus"
)

const (
	cmdFCNS        = "show fcns database detail"
	cmdDeviceAlias = "show device-alias database"
	cmdZone        = "show zone"
	cmdSwitchName  = "show switchname"
)

// Crawler reads the fabric-wide name server of one Cisco switch. The name
// server already covers every VSAN, so a job is a single pass.
type Crawler struct{}

func New() *Crawler { return &Crawler{} }

func (c *Crawler) CrawlScope(ctx context.Context, t crawler.Target, _ string) crawler.Result {
	log := t.Log
	fcns := t.Output(ctx, cmdFCNS)
	eps := ParseFCNS(fcns)
	if len(eps) == 0 {
		log.WithError(fabric.ErrParseEmpty).Info("fcns database yielded no endpoints")
	}

	self := strings.TrimSpace(t.Output(ctx, cmdSwitchName))
	for i := range eps {
		eps[i].LoginType = loginType(eps[i], t.Switch.IP, self)
	}

	aliases := ParseDeviceAliases(t.Output(ctx, cmdDeviceAlias))
	zones := ParseZones(t.Output(ctx, cmdZone), aliases)
	log.WithFields(logrus.Fields{
		"endpoints": len(eps),
		"aliases":   aliases.Len(),
		"zones":     zones.Len(),
	}).Debug("cisco scope parsed")

	fabric.Annotate(eps, aliases, zones)
	return crawler.Result{
		Endpoints: eps,
		Zones:     fabric.ZoneRecords(zones, models.VendorCisco, t.Switch.IP, ""),
	}
}

// loginType marks an entry local when it registered through the queried
// switch, identified by management IP or by switch name.
func loginType(ep models.Endpoint, host, self string) string {
	if ep.SwitchIP != "" && ep.SwitchIP == host {
		return models.LoginLocal
	}
	if self != "" && ep.SwitchName == self {
		return models.LoginLocal
	}
	return models.LoginRemote
}
