package web

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/AlexYaroshenko/tgpoll/internal/i18n"
)

// Snapshot is what the poll loop publishes after every cycle.
type Snapshot struct {
	Offset     int64     `json:"offset"`
	LastKind   string    `json:"last_kind"`
	LastUpdate time.Time `json:"last_update"`
	Handled    int       `json:"handled"`
	LastError  string    `json:"last_error,omitempty"`
}

// Server exposes the poll loop's state over HTTP. The loop and the
// handlers only meet through UpdateState.
type Server struct {
	mu      sync.RWMutex
	state   Snapshot
	started time.Time
	addr    string
}

func NewServer(port string) *Server {
	if port == "" {
		port = "8080"
	}
	return &Server{addr: ":" + port, started: time.Now()}
}

func (s *Server) UpdateState(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = snap
}

func (s *Server) snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHome)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("🌐 Starting status server on %s...", s.addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("❌ Server forced to shutdown: %v", err)
		return err
	}
	return nil
}

var homeTmpl = template.Must(template.New("home").Funcs(template.FuncMap{
	"T": func(lang, key string) string { return i18n.T(lang, key) },
}).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8" /><title>{{T .Lang "status_title"}}</title></head>
<body>
<h1>{{T .Lang "status_title"}}</h1>
<p>{{T .Lang "status_offset"}}: {{.State.Offset}}</p>
<p>{{T .Lang "status_handled"}}: {{.State.Handled}}</p>
<p>{{T .Lang "status_last"}}: {{if .State.LastUpdate.IsZero}}{{T .Lang "status_never"}}{{else}}{{.State.LastKind}} · {{.State.LastUpdate.Format "2006-01-02 15:04:05"}}{{end}}</p>
</body>
</html>
`))

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	view := struct {
		Lang  string
		State Snapshot
	}{
		Lang:  i18n.DetectLang(r),
		State: s.snapshot(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := homeTmpl.Execute(w, view); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
		Snapshot
	}{
		Status:   "ok",
		Uptime:   time.Since(s.started).Round(time.Second).String(),
		Snapshot: s.snapshot(),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Errorf("encode status: %v", err)
	}
}
