// Package dashboard serves a single live page displaying a running
// pipeline's stats, pushed to the browser over a websocket as its
// counters change.
package dashboard

import (
	"context"
	"encoding/json"
	"html/template"
	"io"
	"net/http"
	"sync"

	"busybeaver/dashboard/fastview"
	"busybeaver/pipeline"

	"github.com/gorilla/mux"
	channerics "github.com/niceyeti/channerics/channels"
)

// Server serves the dashboard's index page and its websocket. It assumes a
// single connected browser; the stats channel it wraps has one producer
// and is not re-broadcast per connection.
type Server struct {
	addr     string
	rootView *rootView

	mu      sync.Mutex
	latest  pipeline.Stats
	hasData bool
}

// NewServer wires a running pipeline's stats stream into the dashboard's
// views, returning a Server ready to Serve.
func NewServer(ctx context.Context, addr string, snapshots <-chan pipeline.Stats) *Server {
	fanned := channerics.Broadcast(ctx.Done(), snapshots, 2)

	srv := &Server{
		addr:     addr,
		rootView: newRootView(ctx, fanned[0]),
	}
	go srv.trackLatest(fanned[1])
	return srv
}

func (s *Server) trackLatest(snapshots <-chan pipeline.Stats) {
	for snap := range snapshots {
		s.mu.Lock()
		s.latest = snap
		s.hasData = true
		s.mu.Unlock()
	}
}

// Serve blocks, serving the dashboard until the process exits or
// ListenAndServe fails.
func (s *Server) Serve() error {
	r := mux.NewRouter()
	r.HandleFunc("/", s.serveIndex).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.serveWebsocket)
	r.HandleFunc("/api/stats", s.serveStatsJSON).Methods(http.MethodGet)

	return http.ListenAndServe(s.addr, r)
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	if err := renderTemplate(w, s.rootView, s.rootView.InitialData()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	cli, err := fastview.NewClient(s.rootView.Updates(), w, r)
	if err != nil {
		return
	}
	_ = cli.Sync()
}

func (s *Server) serveStatsJSON(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap, ok := s.latest, s.hasData
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.Write([]byte(`{}`))
		return
	}
	_ = json.NewEncoder(w).Encode(snap)
}

func renderTemplate(w io.Writer, vc fastview.ViewComponent, data interface{}) error {
	t := template.New("index.html")
	tname, err := vc.Parse(t)
	if err != nil {
		return err
	}
	if _, err = t.Parse(`{{ template "` + tname + `" . }}`); err != nil {
		return err
	}
	return t.Execute(w, data)
}
