package cas

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"cpk/car"
	"cpk/ceramic"
	"cpk/store"
)

// maxRequestSize bounds the CAR accepted with an anchor request
const maxRequestSize = 1 << 20

// RequestJSON is the body returned for a stored anchor request
type RequestJSON struct {
	ID        string              `json:"id"`
	Status    store.RequestStatus `json:"status"`
	CID       string              `json:"cid"`
	StreamID  string              `json:"streamId"`
	Message   string              `json:"message"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

func newRequestJSON(r store.Request) RequestJSON {
	return RequestJSON{
		ID:        r.CID,
		Status:    r.Status,
		CID:       r.Tip,
		StreamID:  r.StreamID,
		Message:   r.Message,
		CreatedAt: r.Created(),
		UpdatedAt: r.Updated(),
	}
}

// Server is a stand in anchor service which accepts and records
// anchor requests without ever anchoring them
type Server struct {
	store *store.Store
	now   func() time.Time
}

func NewServer(s *store.Store) *Server {
	return &Server{store: s, now: time.Now}
}

func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post(RequestsPath, s.createRequest)
	r.Get(RequestsPath+"/{cid}", s.getRequest)

	return r
}

func (s *Server) createRequest(w http.ResponseWriter, r *http.Request) {
	payload, kid, err := VerifyAuthHeader(r.Header.Get("Authorization"))
	if err != nil {
		slog.Warn("Rejected anchor request", slog.Any("err", err))
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	if err := checkAudience(payload.URL, r); err != nil {
		slog.Warn("Rejected anchor request", slog.Any("err", err))
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, fmt.Sprintf("car exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	roots, blks, err := car.Blocks(bytes.NewReader(data))
	if err != nil {
		http.Error(w, "invalid car: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(roots) != 1 {
		http.Error(w, "car must have exactly one root", http.StatusBadRequest)
		return
	}
	if payload.Digest != roots[0].String() {
		http.Error(w, "digest does not match car root", http.StatusUnauthorized)
		return
	}

	var root ceramic.AnchorRoot
	found := false
	for _, b := range blks {
		if b.Cid().Equals(roots[0]) {
			root, err = ceramic.ParseAnchorRoot(b.RawData())
			found = true
			break
		}
	}
	if !found {
		http.Error(w, "car is missing its root block", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	now := s.now().UnixMilli()
	req, err := s.store.PutRequest(store.Request{
		CID:       roots[0].String(),
		StreamID:  root.StreamID.String(),
		Tip:       root.Tip.String(),
		Status:    store.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		slog.Error("Could not store anchor request", slog.Any("err", err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	slog.Info("Accepted anchor request",
		slog.String("cid", req.CID),
		slog.String("stream", req.StreamID),
		slog.String("kid", kid))

	writeJSON(w, http.StatusCreated, newRequestJSON(req))
}

// checkAudience ensures a token was signed for this endpoint. The scheme
// is not compared so the server can sit behind a TLS terminating proxy
func checkAudience(signed string, r *http.Request) error {
	u, err := url.Parse(signed)
	if err != nil {
		return fmt.Errorf("%w: bad url: %s", ErrUnauthorized, err)
	}
	if u.Host != r.Host || u.Path != r.URL.Path {
		return fmt.Errorf("%w: token is for %s", ErrUnauthorized, signed)
	}
	return nil
}

func (s *Server) getRequest(w http.ResponseWriter, r *http.Request) {
	req, err := s.store.GetRequest(chi.URLParam(r, "cid"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "request not found", http.StatusNotFound)
			return
		}
		slog.Error("Could not get anchor request", slog.Any("err", err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, newRequestJSON(req))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to marshal response", slog.Any("err", err))
	}
}
