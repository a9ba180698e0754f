package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/nodescape/nodescape/pkg/entity"
	"github.com/nodescape/nodescape/pkg/graphio"
	"github.com/nodescape/nodescape/pkg/layout"
	"github.com/nodescape/nodescape/pkg/layout/forcedir"
	"github.com/nodescape/nodescape/pkg/options"
	"github.com/nodescape/nodescape/pkg/store"
)

// serveCommand creates the serve command exposing the session API over
// HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		session string
		flags   storeFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the session API over HTTP",
		Long: `Serve the session API over HTTP.

The server holds one session in memory and exposes it as JSON: the graph
itself, aggregated group edges, layout runs, options, and named snapshots
backed by the configured store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g := entity.New()
			if session != "" {
				var err error
				g, err = graphio.ReadFile(session)
				if err != nil {
					return fmt.Errorf("load session %s: %w", session, err)
				}
			}

			snapshots, err := flags.open(cmd.Context())
			if err != nil {
				return err
			}
			defer snapshots.Close()

			srv := newServer(g, snapshots, c.loadOptions(), c.Logger)

			httpServer := &http.Server{
				Addr:              addr,
				Handler:           srv.routes(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			go func() {
				<-cmd.Context().Done()
				_ = httpServer.Close()
			}()

			c.Logger.Info("serving session API", "addr", addr)
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&session, "session", "", "session file to load at startup")
	flags.register(cmd)

	return cmd
}

// server is the HTTP API over one in-memory session. The graph is guarded
// by a single mutex; layout runs always snap so no engine goroutine holds
// positions across requests.
type server struct {
	mu        sync.Mutex
	graph     *entity.Graph
	opts      options.Options
	snapshots store.Store
	logger    *log.Logger
}

func newServer(g *entity.Graph, snapshots store.Store, opts options.Options, logger *log.Logger) *server {
	return &server{
		graph:     g,
		opts:      opts,
		snapshots: snapshots,
		logger:    logger,
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/session", s.handleGetSession)
		r.Put("/session", s.handlePutSession)

		r.Get("/groups/{id}/edges", s.handleGroupEdges)
		r.Post("/groups", s.handleCreateGroup)
		r.Delete("/groups/{id}", s.handleBreakGroup)

		r.Post("/layout", s.handleLayout)

		r.Get("/options", s.handleGetOptions)
		r.Patch("/options", s.handlePatchOptions)

		r.Get("/snapshots", s.handleListSnapshots)
		r.Put("/snapshots/{name}", s.handleSaveSnapshot)
		r.Get("/snapshots/{name}", s.handleLoadSnapshot)
		r.Delete("/snapshots/{name}", s.handleDeleteSnapshot)
	})

	return r
}

// =============================================================================
// Session
// =============================================================================

func (s *server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := graphio.FromGraph(s.graph)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, snap)
}

func (s *server) handlePutSession(w http.ResponseWriter, r *http.Request) {
	g, err := graphio.Read(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.mu.Lock()
	s.graph = g
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Groups
// =============================================================================

// groupEdgeJSON is the wire form of one aggregated edge.
type groupEdgeJSON struct {
	From    string   `json:"from"`
	To      string   `json:"to"`
	Type    string   `json:"type,omitempty"`
	Classes []string `json:"classes,omitempty"`
}

func (s *server) handleGroupEdges(w http.ResponseWriter, r *http.Request) {
	id := entity.ID(chi.URLParam(r, "id"))

	s.mu.Lock()
	defer s.mu.Unlock()

	grp, ok := s.graph.Group(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown group %s", id))
		return
	}

	var edges []*entity.GroupEdge
	switch dir := r.URL.Query().Get("direction"); dir {
	case "", "outgoing":
		edges = s.graph.AggregatedEdges(grp, entity.Outgoing)
	case "incoming":
		edges = s.graph.AggregatedEdges(grp, entity.Incoming)
	case "incoming-grouped":
		edges = s.graph.AggregatedGroupEdges(grp)
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown direction %q", dir))
		return
	}

	out := make([]groupEdgeJSON, len(edges))
	for i, ge := range edges {
		out[i] = groupEdgeJSON{
			From:    string(ge.From()),
			To:      string(ge.To()),
			Type:    ge.Type(),
			Classes: ge.Classes(),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// createGroupRequest is the body of POST /api/groups.
type createGroupRequest struct {
	Level    string   `json:"level"`
	Members  []string `json:"members"`
	Override bool     `json:"override"`
}

func (s *server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	members := make([]*entity.Node, 0, len(req.Members))
	for _, id := range req.Members {
		n, ok := s.graph.Node(entity.ID(id))
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Errorf("unknown node %s", id))
			return
		}
		members = append(members, n)
	}

	grp, err := s.graph.CreateGroup(req.Level, members, req.Override)
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": string(grp.ID())})
}

func (s *server) handleBreakGroup(w http.ResponseWriter, r *http.Request) {
	id := entity.ID(chi.URLParam(r, "id"))

	s.mu.Lock()
	defer s.mu.Unlock()

	grp, ok := s.graph.Group(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown group %s", id))
		return
	}
	s.graph.RemoveGroupKeepNodes(grp)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Layout
// =============================================================================

func (s *server) handleLayout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	opts := s.opts.Snapshot()
	opts.Animate = false

	coord := layout.NewCoordinator(s.graph, newHeadlessView(s.graph), forcedir.New(forcedir.Config{}), &opts)
	coord.Activate()
	defer coord.Deactivate()

	if err := coord.Run(); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, graphio.FromGraph(s.graph))
}

// =============================================================================
// Options
// =============================================================================

func (s *server) handleGetOptions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.opts.Snapshot()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, snap)
}

func (s *server) handlePatchOptions(w http.ResponseWriter, r *http.Request) {
	var p options.Partial
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	s.opts.Restore(p)
	snap := s.opts.Snapshot()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, snap)
}

// =============================================================================
// Snapshots
// =============================================================================

func (s *server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	names, err := s.snapshots.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	s.mu.Lock()
	data, err := graphio.Marshal(s.graph)
	s.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if err := s.snapshots.Set(r.Context(), name, data); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleLoadSnapshot(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	data, err := s.snapshots.Get(r.Context(), name)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := s.snapshots.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Helpers
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
