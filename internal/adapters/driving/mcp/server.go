package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/deckqa/internal/logger"
)

// Version is the MCP server version.
const Version = "0.1.0"

// DefaultSession is the session tools fall back to when none is configured.
const DefaultSession = "default"

// shutdownTimeout bounds how long in-flight HTTP requests get on exit.
const shutdownTimeout = 5 * time.Second

const instructions = `deckqa answers questions about documents the user has ingested into
sessions (slide decks, PDFs, Word documents, images, audio and video).
Use ask for an answer with page or slide references, retrieve to see the
matching passages, and list_documents to see what a session holds.
Follow-up questions should pass the previous question and answer.`

// Server exposes the QA and ingest ports as MCP tools and resources.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer creates a new MCP server with the given ports.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}
	if ports.DefaultSession == "" {
		ports.DefaultSession = DefaultSession
	}

	s := &Server{
		ports: ports,
		server: mcp.NewServer(
			&mcp.Implementation{Name: "deckqa", Version: Version},
			&mcp.ServerOptions{Instructions: instructions},
		),
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Run serves MCP over stdio until ctx is cancelled or the client leaves.
func (s *Server) Run(ctx context.Context) error {
	logger.Debug("MCP server on stdio, default session %q", s.ports.DefaultSession)
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves streamable HTTP MCP on addr until ctx is cancelled.
// GET /healthz answers 200 for liveness probes.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("MCP server shutdown: %v", err)
		}
	}()

	logger.Info("MCP server listening on %s", addr)
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.Handle("/", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil))
	return mux
}

// session resolves the session a tool call targets.
func (s *Server) session(id string) string {
	if id == "" {
		return s.ports.DefaultSession
	}
	return id
}
