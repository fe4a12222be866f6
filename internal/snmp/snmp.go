// Package snmp collects the switch identity and interface states shown on
// the overview page.
package snmp

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-fcmap/internal/models"
	"go-fcmap/internal/oid"

	"github.com/gosnmp/gosnmp"
	"github.com/sirupsen/logrus"
)

type System struct {
	Name  string
	Descr string
}

type Port struct {
	Index  int
	Name   string
	Status string
}

// Walker reads SNMP data from one agent.
type Walker interface {
	SystemInfo(ctx context.Context, host, community string) (System, error)
	InterfaceWalk(ctx context.Context, host, community string) (map[int]Port, error)
}

// Client is a Walker speaking SNMP v2c.
type Client struct {
	Port    uint16
	Timeout time.Duration
	Retries int
}

func (c Client) connect(ctx context.Context, host, community string) (*gosnmp.GoSNMP, error) {
	g := &gosnmp.GoSNMP{
		Context:   ctx,
		Target:    host,
		Port:      c.Port,
		Community: community,
		Version:   gosnmp.Version2c,
		Timeout:   c.Timeout,
		Retries:   c.Retries,
	}
	if g.Port == 0 {
		g.Port = 161
	}
	if g.Timeout == 0 {
		g.Timeout = gosnmp.Default.Timeout
	}
	if err := g.Connect(); err != nil {
		return nil, fmt.Errorf("connect error: %w", err)
	}
	return g, nil
}

func (c Client) SystemInfo(ctx context.Context, host, community string) (System, error) {
	g, err := c.connect(ctx, host, community)
	if err != nil {
		return System{}, err
	}
	defer g.Conn.Close()

	pkt, err := g.Get([]string{oid.SysName, oid.SysDescr})
	if err != nil {
		return System{}, fmt.Errorf("SNMP get error: %w", err)
	}
	var sys System
	for _, v := range pkt.Variables {
		s := octets(v)
		switch strings.TrimPrefix(v.Name, ".") {
		case oid.SysName:
			sys.Name = s
		case oid.SysDescr:
			sys.Descr = s
		}
	}
	return sys, nil
}

func (c Client) InterfaceWalk(ctx context.Context, host, community string) (map[int]Port, error) {
	g, err := c.connect(ctx, host, community)
	if err != nil {
		return nil, err
	}
	defer g.Conn.Close()

	ports := make(map[int]Port)
	err = g.BulkWalk(oid.IfOperStatus, func(pdu gosnmp.SnmpPDU) error {
		idx, ok := index(pdu.Name, oid.IfOperStatus)
		if !ok {
			return nil // skip invalid
		}
		p := ports[idx]
		p.Index = idx
		p.Status = oid.OperLabel(int(gosnmp.ToBigInt(pdu.Value).Int64()))
		ports[idx] = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("SNMP walk error: %w", err)
	}

	// ifName is optional on older agents.
	_ = g.BulkWalk(oid.IfName, func(pdu gosnmp.SnmpPDU) error {
		idx, ok := index(pdu.Name, oid.IfName)
		if !ok {
			return nil
		}
		if p, seen := ports[idx]; seen {
			p.Name = octets(pdu)
			ports[idx] = p
		}
		return nil
	})
	return ports, nil
}

// index extracts the interface index that follows column in an OID.
func index(name, column string) (int, bool) {
	name = strings.TrimPrefix(name, ".")
	if !strings.HasPrefix(name, column+".") {
		return 0, false
	}
	rest := strings.TrimPrefix(name, column+".")
	if strings.Contains(rest, ".") {
		return 0, false
	}
	idx, err := strconv.Atoi(rest)
	if err != nil || idx < 1 {
		return 0, false
	}
	return idx, true
}

func octets(pdu gosnmp.SnmpPDU) string {
	switch v := pdu.Value.(type) {
	case []byte:
		return strings.TrimSpace(string(v))
	case string:
		return strings.TrimSpace(v)
	}
	return ""
}

// Store keeps the inventory gathered by Poller.
type Store interface {
	UpsertSwitch(ctx context.Context, sw *models.Switch) error
	RecordPortStatus(ctx context.Context, switchID uint, idx int, name, status string) error
}

// Poller refreshes the inventory of one switch at a time.
type Poller struct {
	Walker Walker
	Store  Store
	Log    logrus.FieldLogger
	Now    func() time.Time
}

// PollSwitch stores the identity and port states of the switch at host.
func (p *Poller) PollSwitch(ctx context.Context, host, community, vendor string) error {
	log := p.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	log = log.WithField("switch", host)

	sys, err := p.Walker.SystemInfo(ctx, host, community)
	if err != nil {
		return fmt.Errorf("system info %s: %w", host, err)
	}
	ports, err := p.Walker.InterfaceWalk(ctx, host, community)
	if err != nil {
		return fmt.Errorf("interface walk %s: %w", host, err)
	}

	sw := &models.Switch{
		Name:      sys.Name,
		IPAddress: host,
		Vendor:    vendor,
		Descr:     sys.Descr,
		PortCount: len(ports),
		PolledAt:  now(),
	}
	if sw.Name == "" {
		sw.Name = host
	}
	if err := p.Store.UpsertSwitch(ctx, sw); err != nil {
		return fmt.Errorf("store switch %s: %w", host, err)
	}

	failed := 0
	for idx, port := range ports {
		if err := p.Store.RecordPortStatus(ctx, sw.ID, idx, port.Name, port.Status); err != nil {
			failed++
			log.WithError(err).WithField("port", idx).Warn("port status not stored")
		}
	}
	log.WithFields(logrus.Fields{"ports": len(ports), "failed": failed}).Debug("inventory polled")
	return nil
}
