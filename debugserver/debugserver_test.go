package debugserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"checkertrace/camera"
	"checkertrace/renderer"
	"checkertrace/scene"
	"checkertrace/vmath/vec3"
)

type discard struct{}

func (discard) SetPixel(col, row int, c vec3.T) {}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	return rec
}

func TestEndpoints(t *testing.T) {
	progress := &renderer.Progress{}
	s := New("127.0.0.1:0", progress)
	h := s.Handler()

	if rec := get(t, h, "/healthz"); rec.Code != http.StatusOK {
		t.Errorf("/healthz returned %d, want 200", rec.Code)
	}
	if rec := get(t, h, "/readyz"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("/readyz before render returned %d, want 503", rec.Code)
	}
	if rec := get(t, h, "/progress"); !strings.Contains(rec.Body.String(), "waiting") {
		t.Errorf("/progress before render does not say waiting:\n%s", rec.Body.String())
	}

	v, err := camera.New(vec3.T{0, 0, 10}, vec3.T{}, vec3.T{0, 1, 0}, 4, 4)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	opts := renderer.DefaultOptions()
	opts.Progress = progress
	if _, err := renderer.TraceScreen(context.Background(), scene.Empty(), v, discard{}, opts); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if rec := get(t, h, "/readyz"); rec.Code != http.StatusOK {
		t.Errorf("/readyz after render returned %d, want 200", rec.Code)
	}

	body := get(t, h, "/progress").Body.String()
	for _, want := range []string{"done", "4 / 4 (100.0%)", "16 / 16", "1.00"} {
		if !strings.Contains(body, want) {
			t.Errorf("/progress is missing %q:\n%s", want, body)
		}
	}
}

func TestRunStopsWithContext(t *testing.T) {
	s := New("127.0.0.1:0", &renderer.Progress{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()
	cancel()

	if err := <-done; err != nil {
		t.Errorf("Run returned %v, want nil", err)
	}
}
