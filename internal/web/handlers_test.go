package web

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tbraaten/orderflat/internal/config"
	"github.com/tbraaten/orderflat/internal/flatten"
	"github.com/tbraaten/orderflat/internal/metrics"
	"github.com/tbraaten/orderflat/internal/store"
)

// newTestServer builds a server whose handlers can be exercised up to the
// point where they would touch the database.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.RequestTimeout = 10 * time.Second
	cfg.Flatten.MaxUploadSize = 1 << 20
	cfg.Flatten.Timeout = 10 * time.Second
	return NewServer(flatten.New(nil), store.New(nil), metrics.NewRegistry(), cfg)
}

// postOrders uploads the given orders JSON to /api/flatten.
func postOrders(t *testing.T, s *Server, ordersJSON string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("orders", "orders.json")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte(ordersJSON))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/flatten", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandleFlattenMissingFile(t *testing.T) {
	s := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/flatten", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleFlattenMalformedOrders(t *testing.T) {
	s := newTestServer(t)

	rec := postOrders(t, s, `{"not": "an array"`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error body is not JSON: %v", err)
	}
	if resp["error"] == "" {
		t.Error("error body missing error field")
	}
}

func TestHandleFlattenTimeout(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.RequestTimeout = 10 * time.Second
	cfg.Flatten.MaxUploadSize = 1 << 20
	cfg.Flatten.Timeout = time.Nanosecond
	s := NewServer(flatten.New(nil), store.New(nil), metrics.NewRegistry(), cfg)

	rec := postOrders(t, s, `[]`)

	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusGatewayTimeout)
	}
}

func TestHandleGetRunInvalidID(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/runs/not-a-uuid", nil)
	rec := httptest.NewRecorder()

	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestToResponse(t *testing.T) {
	id := uuid.New()
	now := time.Now().UTC()

	run := store.Run{
		ID:         id,
		OrdersFile: "orders.json",
		RosterFile: "vips.txt",
		Rows:       10,
		Skipped:    2,
		CreatedAt:  now,
	}

	resp := toResponse(run)
	if resp.RunID != id.String() {
		t.Errorf("RunID = %q, want %q", resp.RunID, id.String())
	}
	if resp.Rows != 10 || resp.Skipped != 2 {
		t.Errorf("counts wrong: %+v", resp)
	}
	if resp.Failures == nil {
		t.Error("Failures should serialize as empty array, not null")
	}
}
