package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tbraaten/orderflat/internal/export"
	"github.com/tbraaten/orderflat/internal/flatten"
	"github.com/tbraaten/orderflat/internal/logging"
	"github.com/tbraaten/orderflat/internal/orders"
	"github.com/tbraaten/orderflat/internal/roster"
	"github.com/tbraaten/orderflat/internal/store"

	"github.com/go-chi/chi/v5"
)

// runResponse is the JSON body returned for a completed or queried run.
type runResponse struct {
	RunID      string    `json:"run_id"`
	OrdersFile string    `json:"orders_file"`
	RosterFile string    `json:"roster_file"`
	Rows       int       `json:"rows"`
	Skipped    int       `json:"skipped"`
	Failures   []string  `json:"failures"`
	CreatedAt  time.Time `json:"created_at"`
}

func toResponse(run store.Run) runResponse {
	failures := run.Failures
	if failures == nil {
		failures = []string{}
	}
	return runResponse{
		RunID:      run.ID.String(),
		OrdersFile: run.OrdersFile,
		RosterFile: run.RosterFile,
		Rows:       run.Rows,
		Skipped:    run.Skipped,
		Failures:   failures,
		CreatedAt:  run.CreatedAt,
	}
}

// handleFlatten accepts a multipart upload with an "orders" JSON file and an
// optional "vips" roster file, runs the transform, and persists the result.
func (s *Server) handleFlatten(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	maxSize := s.cfg.Flatten.MaxUploadSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeError(ctx, w, http.StatusBadRequest, "upload too large or invalid form")
		return
	}

	ordersFile, ordersHeader, err := r.FormFile("orders")
	if err != nil {
		writeError(ctx, w, http.StatusBadRequest, "no orders file provided")
		return
	}
	defer ordersFile.Close()

	customers, err := orders.Load(ordersFile)
	if err != nil {
		writeError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	// The roster is optional; absent means no customer is VIP.
	vips := make(flatten.VIPSet)
	rosterName := ""
	if vipFile, vipHeader, err := r.FormFile("vips"); err == nil {
		defer vipFile.Close()
		rosterName = vipHeader.Filename
		vips, err = roster.Load(vipFile)
		if err != nil {
			writeError(ctx, w, http.StatusBadRequest, err.Error())
			return
		}
	}

	// The transform-and-store path runs under its own deadline, independent
	// of the middleware request timeout.
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Flatten.Timeout)
	defer cancel()

	logger := logging.WithFields(ctx,
		"orders_file", ordersHeader.Filename,
		"customers", len(customers),
		"vips", len(vips),
	)
	logger.Info("flatten started")

	start := time.Now()
	rows, report := s.flattener.Flatten(customers, vips)
	elapsed := time.Since(start)

	s.metrics.RunsTotal.Inc()
	s.metrics.RowsEmitted.Add(float64(report.Rows))
	s.metrics.RowsSkipped.Add(float64(report.Skipped))
	s.metrics.RecordFailures.Add(float64(len(report.Failures)))
	s.metrics.FlattenSeconds.Observe(elapsed.Seconds())

	failures := make([]string, len(report.Failures))
	for i, f := range report.Failures {
		failures[i] = f.String()
	}

	run := store.Run{
		ID:         uuid.New(),
		OrdersFile: ordersHeader.Filename,
		RosterFile: rosterName,
		Rows:       report.Rows,
		Skipped:    report.Skipped,
		Failures:   failures,
		CreatedAt:  time.Now().UTC(),
	}

	if ctx.Err() != nil {
		logger.Error("flatten deadline exceeded", "error", ctx.Err())
		writeError(ctx, w, http.StatusGatewayTimeout, "flatten timed out")
		return
	}

	if err := s.store.SaveRun(ctx, run, rows); err != nil {
		logger.Error("saving run", "error", err)
		writeError(ctx, w, http.StatusInternalServerError, "failed to store run")
		return
	}

	logger.Info("flatten completed",
		"run_id", run.ID,
		"rows", report.Rows,
		"skipped", report.Skipped,
		"failures", len(report.Failures),
		"duration_ms", elapsed.Milliseconds(),
	)

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, toResponse(run))
}

// handleListRuns returns recent run summaries.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.ListRuns(r.Context(), 50)
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	out := make([]runResponse, len(runs))
	for i, run := range runs {
		out[i] = toResponse(run)
	}
	writeJSON(w, out)
}

// handleGetRun returns one run summary.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, toResponse(run))
}

// handleExportRun streams a run's rows as a CSV attachment.
func (s *Server) handleExportRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}

	rows, err := s.store.RunRows(r.Context(), run.ID)
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "failed to load rows")
		return
	}

	filename := fmt.Sprintf("flattened_%s.csv", run.ID)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := export.WriteCSV(w, rows); err != nil {
		logging.FromContext(r.Context()).Error("csv export", "error", err)
	}
}

// handleHealth reports liveness, including database reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeError(r.Context(), w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// lookupRun parses the runID URL parameter and fetches the run summary.
func (s *Server) lookupRun(w http.ResponseWriter, r *http.Request) (store.Run, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "invalid run ID")
		return store.Run{}, false
	}

	run, err := s.store.GetRun(r.Context(), id)
	if err == store.ErrRunNotFound {
		writeError(r.Context(), w, http.StatusNotFound, "run not found")
		return store.Run{}, false
	}
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "failed to load run")
		return store.Run{}, false
	}
	return run, true
}
