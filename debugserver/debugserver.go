// Package debugserver exposes health checks and render progress over HTTP.
package debugserver

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"checkertrace/healthz"
	"checkertrace/httpmetrics"
	"checkertrace/renderer"

	"github.com/golang/glog"
)

type Server struct {
	progress *renderer.Progress
	metrics  *httpmetrics.Wrapper
	server   *http.Server
}

func New(listen string, progress *renderer.Progress) *Server {
	s := &Server{
		progress: progress,
	}

	mux := http.NewServeMux()
	mux.Handle("/healthz", healthz.New())
	mux.Handle("/readyz", healthz.NewWithCheck(s.ready))
	mux.Handle("/progress", &ProgressHandler{Progress: progress})

	s.metrics = httpmetrics.New(mux)
	s.server = &http.Server{
		Addr:    listen,
		Handler: s.metrics,

		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	return s
}

// Handler is the server's full handler chain.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) RegisterMetrics() error {
	return s.metrics.RegisterMetrics()
}

// ready fails until a render has started.
func (s *Server) ready() error {
	snap := s.progress.Snapshot()
	if !snap.Running && !snap.Done {
		return errors.New("render not started")
	}
	return nil
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		glog.Infof("Debug server listening on %s", s.server.Addr)
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("while serving debug endpoint: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("while shutting down debug endpoint: %w", err)
	}
	return nil
}

// ProgressHandler renders a page describing the render in flight.
type ProgressHandler struct {
	Progress *renderer.Progress
}

type progressPage struct {
	renderer.ProgressSnapshot

	Percent     string
	MeanSamples string
	Status      string
}

var progressTemplate = template.Must(template.New("progress").Parse(`
<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="utf-8">
    <title>Render Progress</title>
  </head>
  <body>
    <h1>Render Progress</h1>
    <table>
      <tbody>
        <tr><td>Status</td><td>{{.Status}}</td></tr>
        <tr><td>Elapsed</td><td>{{.Elapsed}}</td></tr>
        <tr><td>Rows</td><td>{{.RowsDone}} / {{.Rows}} ({{.Percent}})</td></tr>
        <tr><td>Pixels Traced</td><td>{{.PixelsTraced}} / {{.Pixels}}</td></tr>
        <tr><td>Samples</td><td>{{.Samples}}</td></tr>
        <tr><td>Samples Per Pixel</td><td>{{.MeanSamples}}</td></tr>
      </tbody>
    </table>
  </body>
  <script>setTimeout(function() {location.reload();}, 5000);</script>
</html>
`))

func (h *ProgressHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snap := h.Progress.Snapshot()
	page := progressPage{
		ProgressSnapshot: snap,
		Percent:          fmt.Sprintf("%.1f%%", 100*snap.Fraction()),
		MeanSamples:      fmt.Sprintf("%.2f", snap.MeanSamples()),
	}
	switch {
	case snap.Err != nil:
		page.Status = fmt.Sprintf("failed: %v", snap.Err)
	case snap.Done:
		page.Status = "done"
	case snap.Running:
		page.Status = "running"
	default:
		page.Status = "waiting"
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := progressTemplate.Execute(w, page); err != nil {
		glog.Errorf("Error while rendering progress page: %v", err)
	}
}
