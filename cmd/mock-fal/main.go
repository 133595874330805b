// Command mock-fal runs a deterministic fal queue server for conformance
// and integration testing. It speaks the queue protocol the gateway's
// backend client expects: submit, status polling, and terminal response
// fetch. Behavior is scripted through the prompt:
//
//	"mock:reject" - submission is rejected with HTTP 422
//	"mock:error"  - queue completes but the response fetch fails
//	"mock:empty"  - completes with an empty image list
//	"mock:no-url" - completes with an image whose URL is blank
//	"mock:slow"   - stays IN_PROGRESS for several polls
//
// Any other prompt completes after one poll with a deterministic image.
//
// Configuration:
//
//	MOCK_FAL_PORT - Listen port (default: 9911)
//	MOCK_FAL_KEY  - When set, submissions must carry "Authorization: Key <value>"
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

func main() {
	port := os.Getenv("MOCK_FAL_PORT")
	if port == "" {
		port = "9911"
	}

	q := &mockQueue{
		requests:    make(map[string]*queuedRequest),
		requiredKey: os.Getenv("MOCK_FAL_KEY"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /requests/{id}/status", q.handleStatus)
	mux.HandleFunc("GET /requests/{id}", q.handleResponse)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("POST /{target...}", q.handleSubmit)

	srv := &http.Server{Addr: ":" + port, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock fal queue starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("mock fal queue failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("mock fal queue shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

// --- Queue state ---

// Scripted behaviors, selected by directives in the prompt.
const (
	modeSucceed = "succeed"
	modeError   = "error"
	modeEmpty   = "empty"
	modeNoURL   = "no-url"
)

type mockQueue struct {
	mu          sync.Mutex
	requests    map[string]*queuedRequest
	counter     atomic.Int64
	requiredKey string
}

type queuedRequest struct {
	target    string
	mode      string
	pollsLeft int
	width     int
	height    int
}

// --- Wire types ---

type submitResponse struct {
	RequestID   string `json:"request_id"`
	StatusURL   string `json:"status_url"`
	ResponseURL string `json:"response_url"`
	CancelURL   string `json:"cancel_url"`
}

type statusResponse struct {
	Status        string `json:"status"`
	QueuePosition int    `json:"queue_position"`
}

// --- Handlers ---

func (q *mockQueue) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if q.requiredKey != "" {
		if r.Header.Get("Authorization") != "Key "+q.requiredKey {
			writeDetail(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
	}

	var args map[string]any
	if err := json.NewDecoder(r.Body).Decode(&args); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	prompt, _ := args["prompt"].(string)
	if strings.Contains(prompt, "mock:reject") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"detail": []map[string]any{
				{"loc": []string{"body", "prompt"}, "msg": "prompt rejected by mock", "type": "value_error"},
			},
		})
		return
	}

	req := &queuedRequest{
		target:    r.PathValue("target"),
		mode:      classify(prompt),
		pollsLeft: 1,
	}
	if strings.Contains(prompt, "mock:slow") {
		req.pollsLeft = 3
	}
	req.width, req.height = requestedSize(args)

	id := fmt.Sprintf("mock-req-%d", q.counter.Add(1))
	q.mu.Lock()
	q.requests[id] = req
	q.mu.Unlock()

	base := "http://" + r.Host
	slog.Info("request queued", "id", id, "target", req.target, "mode", req.mode)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(submitResponse{
		RequestID:   id,
		StatusURL:   base + "/requests/" + id + "/status",
		ResponseURL: base + "/requests/" + id,
		CancelURL:   base + "/requests/" + id + "/cancel",
	})
}

func (q *mockQueue) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	q.mu.Lock()
	req, ok := q.requests[id]
	remaining := 0
	if ok && req.pollsLeft > 0 {
		req.pollsLeft--
		remaining = req.pollsLeft
	}
	q.mu.Unlock()

	if !ok {
		writeDetail(w, http.StatusNotFound, "request not found")
		return
	}

	resp := statusResponse{Status: "COMPLETED"}
	if remaining > 0 {
		resp.Status = "IN_PROGRESS"
		resp.QueuePosition = remaining - 1
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (q *mockQueue) handleResponse(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	q.mu.Lock()
	req, ok := q.requests[id]
	q.mu.Unlock()

	if !ok {
		writeDetail(w, http.StatusNotFound, "request not found")
		return
	}

	switch req.mode {
	case modeError:
		writeDetail(w, http.StatusInternalServerError, "mock generation failure")
	case modeEmpty:
		writeImages(w, []map[string]any{})
	case modeNoURL:
		writeImages(w, []map[string]any{
			{"url": "", "width": req.width, "height": req.height, "content_type": "image/png"},
		})
	default:
		writeImages(w, []map[string]any{
			{
				"url":          "http://" + r.Host + "/files/" + id + ".png",
				"width":        req.width,
				"height":       req.height,
				"content_type": "image/png",
			},
		})
	}
}

// --- Helpers ---

func classify(prompt string) string {
	switch {
	case strings.Contains(prompt, "mock:error"):
		return modeError
	case strings.Contains(prompt, "mock:empty"):
		return modeEmpty
	case strings.Contains(prompt, "mock:no-url"):
		return modeNoURL
	default:
		return modeSucceed
	}
}

// requestedSize mirrors the submitted dimensions back in the result, the
// way the real queue reports what was actually rendered.
func requestedSize(args map[string]any) (int, int) {
	width, height := 1024, 1024
	if size, ok := args["image_size"].(map[string]any); ok {
		if v, ok := size["width"].(float64); ok {
			width = int(v)
		}
		if v, ok := size["height"].(float64); ok {
			height = int(v)
		}
	}
	return width, height
}

func writeImages(w http.ResponseWriter, images []map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"images": images,
		"seed":   42,
	})
}

func writeDetail(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"detail": msg})
}
