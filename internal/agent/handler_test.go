package agent

import (
	"encoding/json"
	"image"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alienorar/student-system.asianuniversity.uz/internal/capture"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/config"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/model"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/portal"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/session"
)

func okEnvelope(data interface{}) []byte {
	raw, _ := json.Marshal(data)
	body, _ := json.Marshal(map[string]interface{}{
		"timestamp": time.Now().UnixMilli(),
		"success":   true,
		"data":      json.RawMessage(raw),
	})
	return body
}

func failEnvelope(message string) []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"timestamp":    time.Now().UnixMilli(),
		"success":      false,
		"errorMessage": message,
	})
	return body
}

// newTestRouter wires a full facade against a stub portal backend.
func newTestRouter(t *testing.T, backend http.Handler, framesDir string) *gin.Engine {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.Portal.BaseURL = srv.URL
	cfg.Portal.APIPrefix = "/api/v1/student"
	cfg.Portal.TokenHeader = "x-student-token"
	cfg.Portal.Timeout = 5 * time.Second
	cfg.Portal.RetryDelay = time.Millisecond
	cfg.Server.RefreshInterval = time.Hour
	cfg.Camera.JPEGQuality = 85

	store := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	client := portal.NewClient(cfg, store)
	captures := capture.NewManager(capture.DirectoryCamera{Dir: framesDir}, client, nil, cfg.Camera.JPEGQuality)
	refresher := NewRefresher(cfg, client)
	handler := NewHandler(cfg, client, store, captures, refresher)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, handler)
	return router
}

func writeFrame(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "frame.jpg")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create frame: %v", err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, image.NewRGBA(image.Rect(0, 0, 4, 4)), nil); err != nil {
		t.Fatalf("encode frame: %v", err)
	}
	return path
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	return rec
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

// A second feedback request arriving while one is in flight must be
// refused with a conflict, and only the first reaches the backend.
func TestSubmitFeedbackConcurrentConflict(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var calls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/student/feedback", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(entered)
			<-release
		}
		w.Write(okEnvelope(nil))
	})
	mux.HandleFunc("/api/v1/student/schedule/finished/lesson/list", func(w http.ResponseWriter, r *http.Request) {
		w.Write(okEnvelope([]model.SubjectLessons{}))
	})
	router := newTestRouter(t, mux, t.TempDir())

	first := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/feedback",
			strings.NewReader(`{"lessonSessionId":1,"rating":5,"comment":"a"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(first, req)
		close(done)
	}()
	<-entered

	second := postJSON(router, "/api/v1/feedback", `{"lessonSessionId":2,"rating":4,"comment":"b"}`)
	if second.Code != http.StatusConflict {
		t.Errorf("concurrent submit status = %d, want %d", second.Code, http.StatusConflict)
	}

	close(release)
	<-done
	if first.Code != http.StatusOK {
		t.Errorf("first submit status = %d, want %d", first.Code, http.StatusOK)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("backend feedback calls = %d, want 1", got)
	}
}

func TestStatisticsParamValidation(t *testing.T) {
	var hits int32
	var gotPage string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/student/statistics/lesson/load", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		gotPage = r.URL.Query().Get("page")
		w.Write(okEnvelope(model.LessonStatistics{}))
	})
	router := newTestRouter(t, mux, t.TempDir())

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{name: "garbage size", query: "size=abc", want: http.StatusBadRequest},
		{name: "negative size", query: "size=-5", want: http.StatusBadRequest},
		{name: "garbage page", query: "size=10&page=junk", want: http.StatusBadRequest},
		{name: "page zero", query: "size=10&page=0", want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(router, "/api/v1/statistics?"+tt.query)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Fatalf("backend reached %d times with invalid params", hits)
	}

	rec := get(router, "/api/v1/statistics?size=10&page=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("valid request status = %d", rec.Code)
	}
	if gotPage != "0" {
		t.Errorf("backend page param = %q, want %q", gotPage, "0")
	}
}

// After a failed start-lesson call, re-posting the same lesson retries
// with the retained still. The frame file is removed between attempts, so
// the retry can only succeed without recapturing.
func TestStartLessonRetryAfterFailure(t *testing.T) {
	framesDir := t.TempDir()
	framePath := writeFrame(t, framesDir)

	var uploads, starts int32
	mux := http.NewServeMux()
	mux.HandleFunc("/file/upload", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&uploads, 1)
		w.Write([]byte(`{"link":{"file_path":"/uploads/still.jpg"}}`))
	})
	mux.HandleFunc("/schedule/start-lesson", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&starts, 1) == 1 {
			w.Write(failEnvelope("lesson is not open yet"))
			return
		}
		w.Write(okEnvelope(nil))
	})
	router := newTestRouter(t, mux, framesDir)

	rec := postJSON(router, "/api/v1/lessons/L7/start", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("first start status = %d, want %d", rec.Code, http.StatusBadGateway)
	}

	if err := os.Remove(framePath); err != nil {
		t.Fatalf("remove frame: %v", err)
	}

	rec = postJSON(router, "/api/v1/lessons/L7/start", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("retry status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if got := atomic.LoadInt32(&uploads); got != 2 {
		t.Errorf("uploads = %d, want 2", got)
	}
	if got := atomic.LoadInt32(&starts); got != 2 {
		t.Errorf("start calls = %d, want 2", got)
	}
}

func TestCancelLessonReleasesSession(t *testing.T) {
	framesDir := t.TempDir()
	writeFrame(t, framesDir)

	mux := http.NewServeMux()
	mux.HandleFunc("/file/upload", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"link":{"file_path":"/uploads/still.jpg"}}`))
	})
	mux.HandleFunc("/schedule/start-lesson", func(w http.ResponseWriter, r *http.Request) {
		w.Write(failEnvelope("lesson is not open yet"))
	})
	router := newTestRouter(t, mux, framesDir)

	if rec := postJSON(router, "/api/v1/lessons/L7/start", ""); rec.Code != http.StatusBadGateway {
		t.Fatalf("start status = %d, want %d", rec.Code, http.StatusBadGateway)
	}

	// The failed session still holds the camera.
	if rec := postJSON(router, "/api/v1/lessons/L8/start", ""); rec.Code != http.StatusConflict {
		t.Errorf("start other lesson status = %d, want %d", rec.Code, http.StatusConflict)
	}
	if rec := postJSON(router, "/api/v1/lessons/L8/cancel", ""); rec.Code != http.StatusNotFound {
		t.Errorf("cancel other lesson status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	if rec := postJSON(router, "/api/v1/lessons/L7/cancel", ""); rec.Code != http.StatusOK {
		t.Fatalf("cancel status = %d, want %d", rec.Code, http.StatusOK)
	}

	// Camera released; a new session can start (and fails at the backend
	// again, not on session exclusivity).
	if rec := postJSON(router, "/api/v1/lessons/L8/start", ""); rec.Code != http.StatusBadGateway {
		t.Errorf("start after cancel status = %d, want %d", rec.Code, http.StatusBadGateway)
	}
}
