// Package web serves the polled inventory as JSON.
package web

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"go-netmap/internal/db"
	"go-netmap/internal/mib"
	"go-netmap/internal/models"
)

// Poller polls one switch on demand.
type Poller interface {
	PollSwitch(ctx context.Context, sw models.Switch) (*mib.Document, error)
}

// Server holds what the handlers need.
type Server struct {
	store    *db.Store
	poller   Poller
	gatherer prometheus.Gatherer
	logger   *zap.Logger
}

// New returns a Server. gatherer may be nil to leave /metrics out.
func New(store *db.Store, poller Poller, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{store: store, poller: poller, gatherer: gatherer, logger: logger}
}

// App returns a fiber app with every route registered.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})
	s.SetupRoutes(app)
	return app
}

func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	api.Get("/switches", s.listSwitches)
	api.Post("/switches", s.addSwitch)
	api.Delete("/switches/:id", s.deleteSwitch)
	api.Get("/switches/:id/ports", s.ports)
	api.Get("/switches/:id/snapshot", s.snapshot)
	api.Post("/switches/:id/poll", s.poll)

	// MAC search across every switch
	api.Get("/mac", s.searchMAC)

	if s.gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.Is(err, db.ErrNotFound):
		code = fiber.StatusNotFound
	}
	if code == fiber.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func (s *Server) listSwitches(c *fiber.Ctx) error {
	switches, err := s.store.Switches(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(switches)
}

// switchRequest is the body of POST /api/switches. It carries the secrets
// that models.Switch never serializes.
type switchRequest struct {
	Name         string `json:"name"`
	IPAddress    string `json:"ip_address"`
	Port         uint16 `json:"port"`
	Version      string `json:"version"`
	Community    string `json:"community"`
	Username     string `json:"username"`
	AuthProtocol string `json:"auth_protocol"`
	AuthPassword string `json:"auth_password"`
	PrivProtocol string `json:"priv_protocol"`
	PrivPassword string `json:"priv_password"`
}

func (s *Server) addSwitch(c *fiber.Ctx) error {
	var req switchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if req.Name == "" || req.IPAddress == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name and ip_address are required")
	}
	if req.Version == "" {
		req.Version = "2c"
	}

	sw := models.Switch{
		Name:         req.Name,
		IPAddress:    req.IPAddress,
		Port:         req.Port,
		Version:      req.Version,
		Community:    req.Community,
		Username:     req.Username,
		AuthProtocol: req.AuthProtocol,
		AuthPassword: req.AuthPassword,
		PrivProtocol: req.PrivProtocol,
		PrivPassword: req.PrivPassword,
	}
	if err := s.store.AddSwitch(c.UserContext(), &sw); err != nil {
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(sw)
}

func (s *Server) deleteSwitch(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "bad switch id")
	}
	if err := s.store.DeleteSwitch(c.UserContext(), uint(id)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// portView is a port with the MACs learned on it.
type portView struct {
	models.PortStatus
	Macs []models.MacEntry `json:"macs"`
}

func (s *Server) ports(c *fiber.Ctx) error {
	sw, err := s.lookup(c)
	if err != nil {
		return err
	}
	ports, err := s.store.Ports(c.UserContext(), sw.ID)
	if err != nil {
		return err
	}

	views := make([]portView, 0, len(ports))
	for _, p := range ports {
		macs, err := s.store.Macs(c.UserContext(), sw.ID, p.PortIndex)
		if err != nil {
			return err
		}
		views = append(views, portView{PortStatus: p, Macs: macs})
	}
	return c.JSON(views)
}

func (s *Server) snapshot(c *fiber.Ctx) error {
	sw, err := s.lookup(c)
	if err != nil {
		return err
	}
	snap, err := s.store.Snapshot(c.UserContext(), sw.ID)
	if err != nil {
		return err
	}
	return c.JSON(snap)
}

func (s *Server) poll(c *fiber.Ctx) error {
	sw, err := s.lookup(c)
	if err != nil {
		return err
	}
	doc, err := s.poller.PollSwitch(c.UserContext(), sw)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return c.JSON(doc)
}

func (s *Server) searchMAC(c *fiber.Ctx) error {
	query := c.Query("q")
	if db.NormalizeMAC(query) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "query parameter q is required")
	}
	results, err := s.store.SearchMAC(c.UserContext(), query)
	if err != nil {
		return err
	}
	if results == nil {
		results = []db.MacResult{}
	}
	return c.JSON(results)
}

func (s *Server) lookup(c *fiber.Ctx) (models.Switch, error) {
	id, err := c.ParamsInt("id")
	if err != nil {
		return models.Switch{}, fiber.NewError(fiber.StatusBadRequest, "bad switch id")
	}
	return s.store.Switch(c.UserContext(), uint(id))
}
