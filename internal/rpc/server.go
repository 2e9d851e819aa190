// Package rpc implements the JSON-RPC 2.0 API of the tip jar daemon.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/0xpierson/tipjar/config"
	"github.com/0xpierson/tipjar/internal/log"
)

// maxBodySize is the maximum allowed request body size (1 MB).
const maxBodySize = 1 << 20

// methodKey stores the JSON-RPC method on the gin context for middleware.
const methodKey = "rpc.method"

// codeKey stores the JSON-RPC error code (0 on success).
const codeKey = "rpc.code"

// Server is the JSON-RPC 2.0 HTTP server.
type Server struct {
	addr        string
	svc         TipService
	router      *gin.Engine
	server      *http.Server
	logger      zerolog.Logger
	ln          net.Listener
	allowedNets []*net.IPNet // Empty = allow all.
	corsOrigins []string     // Empty = no CORS headers.
	metrics     bool
}

// New creates a new RPC server for svc. A zero-value ServerConfig allows all
// IPs, disables CORS and does not expose /metrics.
func New(addr string, svc TipService, cfg config.ServerConfig) *Server {
	s := &Server{
		addr:        addr,
		svc:         svc,
		logger:      log.Server,
		allowedNets: parseAllowedIPs(cfg.AllowedIPs),
		corsOrigins: cfg.CORSOrigins,
		metrics:     cfg.Metrics,
	}

	s.router = gin.New()
	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Handler:     s.router,
		ReadTimeout: 30 * time.Second,
		// Sends wait for the wallet to sign and broadcast.
		WriteTimeout: 5 * time.Minute,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		s.logger.Error().
			Interface("panic", recovered).
			Str("path", c.Request.URL.Path).
			Msg("Panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, Response{
			JSONRPC: "2.0",
			Error:   &Error{Code: CodeInternalError, Message: "internal error"},
		})
	}))
	s.router.Use(s.ipFilter())
	s.router.Use(s.cors())
	s.router.Use(metricsMiddleware())
	s.router.Use(s.logging())
}

func (s *Server) setupRoutes() {
	s.router.POST("/", s.handleRequest)
	s.router.GET("/", func(c *gin.Context) {
		writeError(c, nil, CodeInvalidRequest, "only POST method is allowed")
	})
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "network": s.svc.Network().Name})
	})
	if s.metrics {
		s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// parseAllowedIPs converts string IP/CIDR entries into net.IPNet.
func parseAllowedIPs(entries []string) []*net.IPNet {
	var nets []*net.IPNet
	for _, entry := range entries {
		_, ipNet, err := net.ParseCIDR(entry)
		if err == nil {
			nets = append(nets, ipNet)
			continue
		}
		// Try as a single IP (add /32 or /128).
		ip := net.ParseIP(entry)
		if ip == nil {
			continue
		}
		bits := 32
		if ip.To4() == nil {
			bits = 128
		}
		nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
	}
	return nets
}

// Start begins listening and serving in a background goroutine.
// It returns immediately after the listener is bound.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("rpc listen: %w", err)
	}
	s.ln = ln

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("RPC server error")
		}
	}()

	return nil
}

// Addr returns the listener address (useful when bound to :0).
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// ipFilter rejects clients outside the allowed networks.
func (s *Server) ipFilter() gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(s.allowedNets) == 0 {
			c.Next()
			return
		}
		host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
		if err != nil {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		ip := net.ParseIP(host)
		if ip == nil || !s.isIPAllowed(ip) {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

// cors sets CORS headers and answers preflight requests.
func (s *Server) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.setCORSHeaders(c)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ev := s.logger.Debug()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = s.logger.Warn()
		}
		ev.Str("path", c.Request.URL.Path).
			Str("method", c.GetString(methodKey)).
			Int("code", c.GetInt(codeKey)).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("Request")
	}
}

// handleRequest is the main HTTP handler for JSON-RPC requests.
func (s *Server) handleRequest(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodySize+1))
	if err != nil {
		writeError(c, nil, CodeParseError, "failed to read request body")
		return
	}
	if len(body) > maxBodySize {
		writeError(c, nil, CodeInvalidRequest, "request body too large")
		return
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(c, nil, CodeParseError, "invalid JSON")
		return
	}

	if req.JSONRPC != "2.0" {
		writeError(c, req.ID, CodeInvalidRequest, "jsonrpc must be \"2.0\"")
		return
	}
	c.Set(methodKey, req.Method)

	result, rpcErr := s.dispatch(c.Request.Context(), &req)
	if rpcErr != nil {
		writeJSON(c, Response{
			JSONRPC: "2.0",
			Error:   rpcErr,
			ID:      req.ID,
		})
		return
	}

	writeJSON(c, Response{
		JSONRPC: "2.0",
		Result:  result,
		ID:      req.ID,
	})
}

// dispatch routes a request to the appropriate handler.
func (s *Server) dispatch(ctx context.Context, req *Request) (interface{}, *Error) {
	switch req.Method {
	case "amount_sanitize":
		return s.handleAmountSanitize(req)
	case "amount_parse":
		return s.handleAmountParse(req)
	case "amount_format":
		return s.handleAmountFormat(req)
	case "jar_getInfo":
		return s.handleJarGetInfo(req)
	case "wallet_getInfo":
		return s.handleWalletGetInfo(ctx, req)
	case "tip_tokens":
		return s.handleTipTokens(req)
	case "tip_getBalance":
		return s.handleTipGetBalance(ctx, req)
	case "tip_check":
		return s.handleTipCheck(ctx, req)
	case "tip_send":
		return s.handleTipSend(ctx, req)
	case "tip_status":
		return s.handleTipStatus(req)
	default:
		return nil, &Error{Code: CodeMethodNotFound, Message: fmt.Sprintf("method %q not found", req.Method)}
	}
}

// writeJSON writes a JSON-RPC response. Errors are reported with HTTP 200 as
// the protocol requires.
func writeJSON(c *gin.Context, resp Response) {
	if resp.Error != nil {
		c.Set(codeKey, resp.Error.Code)
	}
	c.JSON(http.StatusOK, resp)
}

// writeError writes a JSON-RPC error response.
func writeError(c *gin.Context, id interface{}, code int, message string) {
	writeJSON(c, Response{
		JSONRPC: "2.0",
		Error:   &Error{Code: code, Message: message},
		ID:      id,
	})
}

// isIPAllowed checks if the IP is in the allowed networks list.
func (s *Server) isIPAllowed(ip net.IP) bool {
	for _, n := range s.allowedNets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// setCORSHeaders adds CORS headers based on the configured origins.
func (s *Server) setCORSHeaders(c *gin.Context) {
	if len(s.corsOrigins) == 0 {
		return
	}

	origin := c.GetHeader("Origin")
	if origin == "" {
		return
	}

	allowed := false
	for _, o := range s.corsOrigins {
		if o == "*" {
			c.Header("Access-Control-Allow-Origin", "*")
			allowed = true
			break
		}
		if o == origin {
			c.Header("Access-Control-Allow-Origin", origin)
			allowed = true
			break
		}
	}

	if allowed {
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
	}
}

// parseParams unmarshals the request params into the given target.
func parseParams(req *Request, target interface{}) *Error {
	if req.Params == nil {
		return &Error{Code: CodeInvalidParams, Message: "params required"}
	}

	data, err := json.Marshal(req.Params)
	if err != nil {
		return &Error{Code: CodeInvalidParams, Message: "invalid params"}
	}

	if err := json.Unmarshal(data, target); err != nil {
		return &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid params: %v", err)}
	}
	return nil
}

// parseOptionalParams is parseParams for methods whose params may be omitted.
func parseOptionalParams(req *Request, target interface{}) *Error {
	if req.Params == nil {
		return nil
	}
	return parseParams(req, target)
}
