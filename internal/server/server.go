// Package server exposes a document store to editors on the LAN.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"time"

	"WebCanvas/internal/export"
	wcnet "WebCanvas/internal/net"
	"WebCanvas/internal/scene"
	"WebCanvas/internal/store"
)

const maxBody = 8 << 20

// Options controls how snapshots are rendered by the PNG endpoint.
type Options struct {
	Width, Height float64
	Scale         float64
	Advertise     bool
}

type Server struct {
	store store.Store
	opts  Options
	mux   *http.ServeMux
	peers *wcnet.Peers
}

func New(st store.Store, opts Options) *Server {
	s := &Server{store: st, opts: opts, mux: http.NewServeMux(), peers: wcnet.NewPeers()}
	s.mux.HandleFunc("POST /api/canvases", s.handleCreate)
	s.mux.HandleFunc("GET /api/canvases/{id}", s.handleLoad)
	s.mux.HandleFunc("PUT /api/canvases/{id}", s.handleSave)
	s.mux.HandleFunc("GET /api/canvases/{id}/png", s.handlePNG)
	return s
}

func (s *Server) Handler() http.Handler {
	return logRequests(s.mux)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ConnState:         s.peers.Track,
	}

	if s.opts.Advertise {
		port, err := wcnet.ListenPort(ln.Addr().String())
		if err != nil {
			ln.Close()
			return err
		}
		if m, err := wcnet.Advertise(port); err != nil {
			log.Printf("[SERVER] mDNS advertisement disabled: %v", err)
		} else {
			defer m.Shutdown()
		}
	}
	log.Printf("[SERVER] Document store listening on %s", wcnet.ShareAddress(ln.Addr().String()))

	errs := make(chan error, 1)
	go func() { errs <- srv.Serve(ln) }()
	select {
	case <-ctx.Done():
		if n := s.peers.Count(); n > 0 {
			log.Printf("[SERVER] Shutting down with %d editors connected: %v", n, s.peers.Addrs())
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errs:
		return err
	}
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	id, err := s.store.Create(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, store.CreateResponse{ID: id})
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Load(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := store.ValidateID(id); err != nil {
		writeError(w, err)
		return
	}
	var req store.SaveRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, store.ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if err := s.store.Save(r.Context(), id, req.CanvasData); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePNG(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	doc, err := s.store.Load(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	snap, err := scene.DecodeSnapshot(doc.CanvasData)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, store.ErrorResponse{Error: err.Error()})
		return
	}
	var buf bytes.Buffer
	if err := export.PNG(&buf, snap, s.opts.Width, s.opts.Height, s.opts.Scale); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(id)))
	w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[SERVER] Error writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrInvalidID):
		status = http.StatusBadRequest
	default:
		log.Printf("[SERVER] Internal error: %v", err)
	}
	writeJSON(w, status, store.ErrorResponse{Error: err.Error()})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[SERVER] %s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}
