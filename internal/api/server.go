package api

import (
	"net/http"
	"time"

	"comanda/internal/kitchen"
	"comanda/internal/monitoring"
	"comanda/internal/restaurant"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Server represents the HTTP surface used by floor staff and the kitchen
type Server struct {
	Router   *gin.Engine
	service  *restaurant.Service
	hub      *kitchen.Hub
	monitor  *monitoring.Monitor
	location *time.Location
	logger   zerolog.Logger
}

// Options wires optional collaborators into the server
type Options struct {
	Hub     *kitchen.Hub
	Monitor *monitoring.Monitor
	// Location interprets report date bounds. Defaults to time.Local.
	Location *time.Location
	Logger   zerolog.Logger
}

// NewServer creates a new API server instance
func NewServer(service *restaurant.Service, opts Options) *Server {
	router := gin.New()

	s := &Server{
		Router:   router,
		service:  service,
		hub:      opts.Hub,
		monitor:  opts.Monitor,
		location: opts.Location,
		logger:   opts.Logger,
	}
	if s.location == nil {
		s.location = time.Local
	}

	router.Use(gin.Recovery(), RequestID(), RequestLogger(s.logger))
	s.setupRoutes()
	return s
}

// ServeHTTP lets the server be mounted directly on an http.Server
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Comanda API is running"})
	})

	if s.hub != nil {
		s.Router.GET("/ws/kitchen", s.hub.HandleWebSocket)
	}

	v1 := s.Router.Group("/api/v1")
	{
		// Menu management
		v1.GET("/menu", s.ListMenu)
		v1.POST("/menu", s.AddMenuItem)
		v1.GET("/menu/:name", s.GetMenuItem)
		v1.PUT("/menu/:name", s.UpdateMenuItem)
		v1.DELETE("/menu/:name", s.RemoveMenuItem)

		// Categories
		v1.GET("/categories", s.ListCategories)
		v1.POST("/categories", s.AddCategory)
		v1.PUT("/categories/:name", s.RenameCategory)
		v1.DELETE("/categories/:name", s.RemoveCategory)

		// Order management
		v1.POST("/orders", s.CreateOrder)
		v1.GET("/orders", s.ListOrders)
		v1.GET("/orders/active", s.ActiveOrders)
		v1.GET("/orders/:id", s.GetOrder)
		v1.POST("/orders/:id/advance", s.AdvanceOrder)
		v1.POST("/orders/:id/items", s.AddLineItem)
		v1.POST("/orders/:id/items/:index/remove", s.RemoveLineItem)
		v1.PUT("/orders/:id/tip", s.ApplyTip)

		// Staff views
		v1.GET("/kitchen", s.KitchenQueue)
		v1.GET("/history", s.History)
		v1.GET("/tables", s.Tables)

		// Reports
		v1.GET("/reports/line-items", s.LineItemReport)
		v1.GET("/reports/orders", s.OrderReport)
		v1.GET("/reports/sales", s.SalesReport)

		v1.GET("/metrics", s.Metrics)
	}
}

// Metrics returns the monitor snapshot
func (s *Server) Metrics(c *gin.Context) {
	if s.monitor == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, s.monitor.GetMetrics())
}
