// Package webui hosts the dashboard HTTP API: agent status and prompts,
// domain registry management, cross-domain search, and a WebSocket event
// stream the dashboard polls instead of hammering the status endpoint.
package webui

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"agentone/internal/agent"
	"agentone/internal/logging"
	"agentone/internal/mcp"
	"agentone/internal/webui/handlers"
	"agentone/internal/webui/middleware"
)

const apiVersion = "0.3.0"

// ServerConfig configures the dashboard server.
type ServerConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	EnableCORS   bool          `json:"enable_cors"`
	Debug        bool          `json:"debug"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

// DefaultServerConfig returns the default dashboard settings.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Host:         "localhost",
		Port:         8080,
		EnableCORS:   true,
		Debug:        false,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
	}
}

// Server is the dashboard HTTP server.
type Server struct {
	manager  *agent.Manager
	registry *mcp.Registry
	model    string

	engine     *gin.Engine
	httpServer *http.Server

	wsUpgrader    websocket.Upgrader
	wsConnections map[*eventConnection]struct{}
	wsConnMutex   sync.Mutex

	host          string
	port          int
	startTime     time.Time
	eventInterval time.Duration

	logger logging.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// ServerOption customizes optional server behavior.
type ServerOption func(*Server)

// WithModelName sets the backend model name reported by the status endpoint.
func WithModelName(model string) ServerOption {
	return func(s *Server) { s.model = model }
}

// WithServerLogger sets the server logger.
func WithServerLogger(logger logging.Logger) ServerOption {
	return func(s *Server) { s.logger = logging.OrNop(logger) }
}

// WithEventInterval sets how often snapshots are pushed to event stream
// subscribers.
func WithEventInterval(interval time.Duration) ServerOption {
	return func(s *Server) {
		if interval > 0 {
			s.eventInterval = interval
		}
	}
}

// NewServer creates the dashboard server and wires all routes.
func NewServer(manager *agent.Manager, registry *mcp.Registry, serverConfig *ServerConfig, opts ...ServerOption) *Server {
	if serverConfig == nil {
		serverConfig = DefaultServerConfig()
	}

	if !serverConfig.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	if serverConfig.EnableCORS {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Requested-With"}
		corsConfig.AllowWebSockets = true
		engine.Use(cors.New(corsConfig))
	}

	ctx, cancel := context.WithCancel(context.Background())

	server := &Server{
		manager:  manager,
		registry: registry,
		engine:   engine,
		wsUpgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		wsConnections: make(map[*eventConnection]struct{}),
		host:          serverConfig.Host,
		port:          serverConfig.Port,
		startTime:     time.Now(),
		eventInterval: 2 * time.Second,
		logger:        logging.NewComponentLogger("webui"),
		ctx:           ctx,
		cancel:        cancel,
	}
	for _, opt := range opts {
		opt(server)
	}

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", serverConfig.Host, serverConfig.Port),
		Handler:      engine,
		ReadTimeout:  serverConfig.ReadTimeout,
		WriteTimeout: serverConfig.WriteTimeout,
	}

	server.setupRoutes()
	return server
}

// Engine exposes the router for tests.
func (s *Server) Engine() http.Handler { return s.engine }

func (s *Server) setupRoutes() {
	agentHandler := handlers.NewAgentHandler(s.manager)
	domainHandler := handlers.NewDomainHandler(s.registry)
	searchHandler := handlers.NewSearchHandler(s.registry)

	api := s.engine.Group("/api")
	api.Use(middleware.JSONMiddleware())

	api.GET("/health", s.handleHealth)
	api.GET("/status", s.handleStatus)

	agents := api.Group("/agents")
	{
		agents.GET("", agentHandler.ListAgents)
		agents.GET("/:id/status", agentHandler.GetStatus)
		agents.POST("/:id/prompt", agentHandler.SendPrompt)
		agents.POST("/:id/configure", agentHandler.Configure)
	}

	domains := api.Group("/domains")
	{
		domains.GET("", domainHandler.ListDomains)
		domains.POST("/:id/status", domainHandler.SetStatus)
	}

	api.POST("/mcp/search", searchHandler.Search)

	api.GET("/events", s.handleEvents)

	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (s *Server) handleHealth(c *gin.Context) {
	agents := make(map[string]int)
	for _, snap := range s.manager.Snapshots() {
		agents[string(snap.Status)]++
	}
	domains := make(map[string]int)
	for _, rec := range s.registry.Snapshot() {
		domains[string(rec.Status)]++
	}

	status := "ok"
	if agents[string(agent.StatusError)] > 0 ||
		domains[string(mcp.StatusDegraded)] > 0 || domains[string(mcp.StatusOffline)] > 0 {
		status = "degraded"
	}

	c.JSON(http.StatusOK, handlers.APIResponse{
		Success: true,
		Data: HealthResponse{
			Status:    status,
			Version:   apiVersion,
			Timestamp: time.Now(),
			Uptime:    time.Since(s.startTime).String(),
			Agents:    agents,
			Domains:   domains,
		},
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, handlers.APIResponse{
		Success: true,
		Data:    s.statusSnapshot(),
	})
}

func (s *Server) statusSnapshot() StatusResponse {
	return StatusResponse{
		Timestamp: time.Now(),
		Uptime:    time.Since(s.startTime).String(),
		Model:     s.model,
		Agents:    s.manager.Snapshots(),
		Domains:   s.registry.Snapshot(),
	}
}

// Start serves HTTP until Stop is called. It blocks.
func (s *Server) Start() error {
	s.logger.Info("dashboard listening on %s:%d", s.host, s.port)

	s.wg.Add(1)
	go s.broadcastEvents()

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("dashboard server: %w", err)
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() error {
	s.logger.Info("stopping dashboard")
	s.cancel()
	s.closeAllConnections()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(ctx)
	s.wg.Wait()
	return err
}

// handleEvents upgrades the request and streams periodic system snapshots to
// the dashboard.
func (s *Server) handleEvents(c *gin.Context) {
	conn, err := s.wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(s.ctx)
	sub := &eventConnection{
		conn:   conn,
		send:   make(chan EventMessage, 8),
		ctx:    ctx,
		cancel: cancel,
	}
	// Immediate first snapshot so a new dashboard does not wait a full tick.
	// The channel is not yet shared, so this cannot race with close.
	sub.send <- EventMessage{Type: "status", Data: s.statusSnapshot(), Timestamp: time.Now()}
	s.addConnection(sub)

	s.wg.Add(2)
	go s.writeEvents(sub)
	go s.readUntilClosed(sub)
}

func (s *Server) writeEvents(sub *eventConnection) {
	defer s.wg.Done()
	defer sub.conn.Close()

	for {
		select {
		case <-sub.ctx.Done():
			return
		case msg, ok := <-sub.send:
			if !ok {
				return
			}
			if err := sub.conn.WriteJSON(msg); err != nil {
				s.removeConnection(sub)
				return
			}
		}
	}
}

// readUntilClosed drains client frames so pings are answered and a closed
// peer is noticed promptly.
func (s *Server) readUntilClosed(sub *eventConnection) {
	defer s.wg.Done()

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			s.removeConnection(sub)
			return
		}
	}
}

func (s *Server) broadcastEvents() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.eventInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			msg := EventMessage{Type: "status", Data: s.statusSnapshot(), Timestamp: time.Now()}
			s.wsConnMutex.Lock()
			for sub := range s.wsConnections {
				select {
				case sub.send <- msg:
				default:
					// Slow consumer, skip this tick.
				}
			}
			s.wsConnMutex.Unlock()
		}
	}
}

func (s *Server) addConnection(sub *eventConnection) {
	s.wsConnMutex.Lock()
	s.wsConnections[sub] = struct{}{}
	s.wsConnMutex.Unlock()
}

func (s *Server) removeConnection(sub *eventConnection) {
	s.wsConnMutex.Lock()
	if _, ok := s.wsConnections[sub]; ok {
		delete(s.wsConnections, sub)
		sub.close()
	}
	s.wsConnMutex.Unlock()
}

func (s *Server) closeAllConnections() {
	s.wsConnMutex.Lock()
	for sub := range s.wsConnections {
		sub.close()
	}
	s.wsConnections = make(map[*eventConnection]struct{})
	s.wsConnMutex.Unlock()
}
