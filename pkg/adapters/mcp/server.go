package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/genie"
	"github.com/aretw0/genie/internal/logging"
	"github.com/aretw0/genie/pkg/domain"
	"github.com/aretw0/genie/pkg/runner"
	"github.com/aretw0/genie/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// DefaultWaitTimeout bounds how long submit_action waits for a step to settle.
const DefaultWaitTimeout = 30 * time.Second

// SessionResponse is the structured result shared by the session tools.
type SessionResponse struct {
	Snapshot   domain.Snapshot    `json:"snapshot" jsonschema_description:"The session state after the call"`
	Navigation *domain.Navigation `json:"navigation,omitempty" jsonschema_description:"Set when the dialogue handed off to a dashboard view"`
}

// SessionArgs identifies a session.
type SessionArgs struct {
	SessionID string `json:"session_id"`
}

// SubmitArgs carries an action for a session.
type SubmitArgs struct {
	SessionID string `json:"session_id"`
	Action    string `json:"action"`
	Wait      bool   `json:"wait"`
}

// Server exposes dialogue sessions as MCP tools.
type Server struct {
	manager     *session.Manager
	logger      *slog.Logger
	waitTimeout time.Duration
	mcpServer   *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithWaitTimeout overrides DefaultWaitTimeout.
func WithWaitTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.waitTimeout = d
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(mgr *session.Manager, opts ...Option) *Server {
	s := &Server{
		manager:     mgr,
		logger:      logging.NewNop(),
		waitTimeout: DefaultWaitTimeout,
		mcpServer:   server.NewMCPServer("genie-mcp", strings.TrimSpace(genie.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("open_session",
		mcp.WithDescription("Open a new investigation session. The assistant starts answering immediately; the snapshot is busy until its first message arrives."),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleOpen))

	s.mcpServer.AddTool(mcp.NewTool("submit_action",
		mcp.WithDescription("Pick one of the follow-up actions currently offered by the session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithString("action", mcp.Required(), mcp.Description("Action identifier from the snapshot's actions")),
		mcp.WithBoolean("wait", mcp.Description("Block until the assistant has finished answering")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleSubmit))

	s.mcpServer.AddTool(mcp.NewTool("reset_session",
		mcp.WithDescription("Clear the conversation and start again from the first step."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleReset))

	s.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Return the current transcript and actions of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleGet))

	s.mcpServer.AddTool(mcp.NewTool("describe_script",
		mcp.WithDescription("Get the full dialogue script for introspection."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, err := json.Marshal(s.manager.Store().Script())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("describe failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleOpen(ctx context.Context, request mcp.CallToolRequest, args struct{}) (SessionResponse, error) {
	_, snap, err := s.manager.Open(ctx)
	if err != nil {
		return SessionResponse{}, fmt.Errorf("open failed: %w", err)
	}
	return SessionResponse{Snapshot: snap}, nil
}

func (s *Server) handleGet(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (SessionResponse, error) {
	sess, err := s.manager.Get(args.SessionID)
	if err != nil {
		return SessionResponse{}, err
	}
	return SessionResponse{Snapshot: sess.Snapshot()}, nil
}

func (s *Server) handleReset(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (SessionResponse, error) {
	snap, err := s.manager.Restart(ctx, args.SessionID)
	if err != nil {
		return SessionResponse{}, fmt.Errorf("reset failed: %w", err)
	}
	return SessionResponse{Snapshot: snap}, nil
}

func (s *Server) handleSubmit(ctx context.Context, request mcp.CallToolRequest, args SubmitArgs) (SessionResponse, error) {
	sess, err := s.manager.Get(args.SessionID)
	if err != nil {
		return SessionResponse{}, err
	}

	clean, err := runner.SanitizeInput(args.Action)
	if err != nil {
		s.logger.Warn("MCP submit: input rejected", "error", err, "size", len(args.Action))
		return SessionResponse{}, fmt.Errorf("input rejected: %w", err)
	}

	var updates <-chan []byte
	if args.Wait {
		waitCtx, cancel := context.WithTimeout(ctx, s.waitTimeout)
		defer cancel()
		ctx = waitCtx
		if updates, err = s.manager.Publisher().Subscribe(waitCtx, sess.ID()); err != nil {
			return SessionResponse{}, err
		}
	}

	snap, err := sess.Submit(ctx, clean)
	if err != nil {
		var illegal *domain.IllegalActionError
		if errors.As(err, &illegal) {
			return SessionResponse{}, fmt.Errorf("%w (offered: %s)", err, offered(snap))
		}
		return SessionResponse{}, err
	}

	resp := SessionResponse{Snapshot: snap}
	if nav := s.navigation(snap, clean); nav != nil {
		resp.Navigation = nav
		return resp, nil
	}
	if updates != nil && snap.Busy {
		if !awaitIdle(ctx, updates) {
			s.logger.Warn("MCP submit: gave up waiting for responses", "session_id", sess.ID())
		}
		resp.Snapshot = sess.Snapshot()
	}
	return resp, nil
}

func (s *Server) navigation(snap domain.Snapshot, actionID string) *domain.Navigation {
	step, err := s.manager.Store().Get(snap.StepID)
	if err != nil || !step.IsTerminal() {
		return nil
	}
	return &domain.Navigation{SessionID: snap.SessionID, ActionID: actionID, StepID: step.ID, View: step.Navigate}
}

// awaitIdle consumes published messages until the session leaves the busy phase.
func awaitIdle(ctx context.Context, updates <-chan []byte) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case payload, ok := <-updates:
			if !ok {
				return false
			}
			msg, err := session.DecodeMessage(payload)
			if err != nil || msg.Diff == nil || msg.Diff.Phase == nil {
				continue
			}
			if *msg.Diff.Phase != domain.PhaseBusy {
				return true
			}
		}
	}
}

func offered(snap domain.Snapshot) string {
	if len(snap.Actions) == 0 {
		return "none"
	}
	ids := make([]string, len(snap.Actions))
	for i, a := range snap.Actions {
		ids[i] = a.ID
	}
	return strings.Join(ids, ", ")
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("genie://script", "Current Dialogue Script",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.manager.Store().Script())
		if err != nil {
			return nil, fmt.Errorf("failed to encode script: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "genie://script",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
