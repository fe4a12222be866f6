package web

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"regexp"
	"strings"

	"go-fcmap/internal/db"
	"go-fcmap/internal/metrics"
	"go-fcmap/internal/models"
	"go-fcmap/internal/portname"
	"go-fcmap/internal/wwpn"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/template/html/v2"
	"github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templates embed.FS

const searchLimit = 500

var listPattern = regexp.MustCompile(`^[:0-9a-zA-Z]+$`)

// Store is the read side of the endpoint and zone collections.
type Store interface {
	FindEndpoint(ctx context.Context, wwpn string) (*models.Endpoint, error)
	SearchEndpoints(ctx context.Context, pattern string, limit int) ([]models.Endpoint, error)
	ListEndpoints(ctx context.Context) ([]models.Endpoint, error)
	FindZone(ctx context.Context, name string) (*models.Zone, error)
}

// Inventory is implemented by stores that also keep the SNMP switch view.
type Inventory interface {
	ListSwitches(ctx context.Context) ([]models.Switch, error)
	PortStatuses(ctx context.Context, switchID uint) ([]models.PortStatus, error)
}

// NewEngine returns the template engine for the embedded pages.
func NewEngine() *html.Engine {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("join", strings.Join)
	engine.AddFunc("mod", func(a, b int) int { return a % b })
	return engine
}

// NewApp builds the fiber app serving the query surface.
func NewApp(store Store, log logrus.FieldLogger) *fiber.App {
	app := fiber.New(fiber.Config{
		Views:                 NewEngine(),
		DisableStartupMessage: true,
	})
	SetupRoutes(app, store, log)
	return app
}

type handler struct {
	store Store
	log   logrus.FieldLogger
}

func SetupRoutes(app *fiber.App, store Store, log logrus.FieldLogger) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	h := &handler{store: store, log: log}

	app.Use(cors.New(cors.Config{AllowOrigins: "*"}))

	app.Get("/", h.overview)
	app.Get("/search", h.searchForm)
	app.Post("/search", h.search)

	app.Get("/wwpn/:wwpn", h.lookup)
	app.Get("/list/:pattern", h.list)
	app.Get("/zones/:name", h.zone)

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
}

func (h *handler) fail(c *fiber.Ctx, err error) error {
	h.log.WithError(err).WithField("path", c.Path()).Error("query failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}

// lookup returns the record for one WWPN, or an empty object when the WWPN
// has never been seen.
func (h *handler) lookup(c *fiber.Ctx) error {
	w, ok := wwpn.Canonical(c.Params("wwpn"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed wwpn"})
	}
	ep, err := h.store.FindEndpoint(c.UserContext(), w)
	if errors.Is(err, db.ErrNotFound) {
		return c.JSON(fiber.Map{})
	}
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(ep)
}

func (h *handler) list(c *fiber.Ctx) error {
	pattern := c.Params("pattern")
	if !listPattern.MatchString(pattern) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed pattern"})
	}
	eps, err := h.store.SearchEndpoints(c.UserContext(), pattern, 0)
	if err != nil {
		return h.fail(c, err)
	}
	list := make([]string, 0, len(eps))
	for _, ep := range eps {
		list = append(list, ep.WWPN)
	}
	return c.JSON(fiber.Map{"wwpn_list": list})
}

func (h *handler) zone(c *fiber.Ctx) error {
	z, err := h.store.FindZone(c.UserContext(), c.Params("name"))
	if errors.Is(err, db.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "zone not found"})
	}
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(z)
}

func (h *handler) searchForm(c *fiber.Ctx) error {
	return c.Render("search", fiber.Map{
		"Results": nil,
		"Query":   "",
	})
}

func (h *handler) search(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.FormValue("wwpn"))
	if query == "" {
		return c.Redirect("/search")
	}
	results, err := h.store.SearchEndpoints(c.UserContext(), query, searchLimit)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Render("search", fiber.Map{
		"Results": results,
		"Query":   query,
	})
}

type PortView struct {
	Index         int
	Name          string
	DisplayName   string
	Status        string
	StatusChanges int
	Endpoints     []models.Endpoint
}

type SwitchView struct {
	Name   string
	IP     string
	Vendor string
	Descr  string
	Ports  []PortView
	// Endpoints holds logins not matched to an SNMP port row.
	Endpoints []models.Endpoint
}

func (h *handler) overview(c *fiber.Ctx) error {
	ctx := c.UserContext()
	eps, err := h.store.ListEndpoints(ctx)
	if err != nil {
		return h.fail(c, err)
	}

	var order []string
	bySwitch := make(map[string][]models.Endpoint)
	for _, ep := range eps {
		if _, ok := bySwitch[ep.SwitchIP]; !ok {
			order = append(order, ep.SwitchIP)
		}
		bySwitch[ep.SwitchIP] = append(bySwitch[ep.SwitchIP], ep)
	}

	var views []SwitchView
	if inv, ok := h.store.(Inventory); ok {
		switches, err := inv.ListSwitches(ctx)
		if err != nil {
			return h.fail(c, err)
		}
		for _, sw := range switches {
			ports, err := inv.PortStatuses(ctx, sw.ID)
			if err != nil {
				return h.fail(c, err)
			}
			view := SwitchView{Name: sw.Name, IP: sw.IPAddress, Vendor: sw.Vendor, Descr: sw.Descr}
			view.Ports, view.Endpoints = attach(ports, bySwitch[sw.IPAddress])
			delete(bySwitch, sw.IPAddress)
			views = append(views, view)
		}
	}

	for _, ip := range order {
		group, ok := bySwitch[ip]
		if !ok {
			continue
		}
		views = append(views, SwitchView{
			Name:      group[0].SwitchName,
			IP:        ip,
			Vendor:    group[0].Vendor,
			Endpoints: group,
		})
	}

	return c.Render("index", fiber.Map{
		"Switches": views,
		"Total":    len(eps),
	})
}

// attach places each endpoint on the SNMP port with the same short label
// and returns the endpoints left over.
func attach(ports []models.PortStatus, eps []models.Endpoint) ([]PortView, []models.Endpoint) {
	views := make([]PortView, 0, len(ports))
	byLabel := make(map[string]int, len(ports))
	for _, p := range ports {
		label := portname.Normalize(p.PortName)
		byLabel[label] = len(views)
		views = append(views, PortView{
			Index:         p.PortIndex,
			Name:          p.PortName,
			DisplayName:   label,
			Status:        p.Status,
			StatusChanges: p.StatusChanges,
		})
	}

	var rest []models.Endpoint
	for _, ep := range eps {
		if i, ok := byLabel[portname.Normalize(ep.PortIndex)]; ok && ep.PortIndex != "" {
			views[i].Endpoints = append(views[i].Endpoints, ep)
			continue
		}
		rest = append(rest, ep)
	}
	return views, rest
}
