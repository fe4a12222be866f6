package brocade

import (
	"context"
	"fmt"

	"go-fcmap/internal/crawler"
	"go-fcmap/internal/fabric"
	"go-fcmap/internal/models"

	"github.com/sirupsen/logrus"
)

const (
	cmdSwitchShow = "switchshow"
	cmdFabricShow = "fabricshow"
	cmdNSCamShow  = "nscamshow"
	cmdAliShow    = "alishow"
	cmdZoneShow   = "zoneshow"
)

// fidCommands differ between FOS releases; both are tried and unioned.
var fidCommands = []string{
	"configshow -all | grep 'Fabric ID'",
	"configshow | grep 'Fabric ID'",
}

// Crawler crawls a Brocade chassis one virtual fabric at a time. Scopes
// only share the session, so they may run concurrently.
type Crawler struct{}

func New() *Crawler { return &Crawler{} }

// Scoped prefixes a command with the virtual fabric context. The empty FID
// addresses the switch's default fabric.
func Scoped(fid, command string) string {
	if fid == "" {
		return command
	}
	return fmt.Sprintf("fosexec --fid %s -cmd \"%s\"", fid, command)
}

// Enumerate lists the chassis' fabric IDs. A switch without virtual
// fabrics yields the single implicit scope "".
func (c *Crawler) Enumerate(ctx context.Context, t crawler.Target) []string {
	outputs := make([]string, 0, len(fidCommands))
	for _, cmd := range fidCommands {
		outputs = append(outputs, t.Output(ctx, cmd))
	}
	fids := ParseFIDs(outputs...)
	if len(fids) == 0 {
		t.Log.Info("no virtual fabrics configured, crawling default fabric")
		return []string{""}
	}
	t.Log.WithField("fids", fids).Debug("virtual fabrics enumerated")
	return fids
}

func (c *Crawler) CrawlScope(ctx context.Context, t crawler.Target, fid string) crawler.Result {
	log := t.Log.WithField("fid", fid)
	t.Log = log

	ss := ParseSwitchShow(t.Output(ctx, Scoped(fid, cmdSwitchShow)))
	if !ss.HeaderFound {
		log.Warn("switchshow port table header not found, output format may have changed")
	}
	scope := fid
	if scope == "" {
		scope = ss.FID
	}

	fm := ParseFabricShow(t.Output(ctx, Scoped(fid, cmdFabricShow)))
	if fm.Len() == 0 {
		log.WithError(fabric.ErrParseEmpty).Info("fabricshow yielded no switches, skipping remote devices")
	}
	remote, gaps := ParseNSCamShow(t.Output(ctx, Scoped(fid, cmdNSCamShow)), fm)
	if gaps > 0 {
		log.WithError(fabric.ErrCorrelationGap).WithField("dropped", gaps).Debug("remote devices dropped")
	}

	aliases := ParseAliShow(t.Output(ctx, Scoped(fid, cmdAliShow)))
	zones := ParseZoneShow(t.Output(ctx, Scoped(fid, cmdZoneShow)), aliases)

	eps := make([]models.Endpoint, 0, len(ss.Endpoints)+len(remote))
	for _, ep := range ss.Endpoints {
		ep.SwitchIP = t.Switch.IP
		ep.FabricScope = scope
		eps = append(eps, ep)
	}
	for _, ep := range remote {
		ep.FabricScope = scope
		eps = append(eps, ep)
	}
	fabric.Annotate(eps, aliases, zones)

	log.WithFields(logrus.Fields{
		"switch_name": ss.Name,
		"local":       len(ss.Endpoints),
		"remote":      len(remote),
		"aliases":     aliases.Len(),
		"zones":       zones.Len(),
	}).Debug("brocade scope parsed")

	return crawler.Result{
		Endpoints: eps,
		Zones:     fabric.ZoneRecords(zones, models.VendorBrocade, t.Switch.IP, scope),
	}
}
