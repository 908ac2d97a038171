package tiles

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"sync"
)

// LayerEntry describes an installed layer
type LayerEntry struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type installed struct {
	kind   string
	source Source
}

// Handler serves installed tile layers as redirects to their upstream tile URLs
type Handler struct {
	mu     sync.RWMutex
	layers map[string]installed
	logger *slog.Logger
}

// NewHandler creates a handler with no layers
func NewHandler(logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{layers: make(map[string]installed), logger: logger}
}

// Install adds or replaces a layer
func (h *Handler) Install(name, kind string, src Source) {
	h.mu.Lock()
	h.layers[name] = installed{kind: kind, source: src}
	h.mu.Unlock()
}

// Uninstall removes a layer
func (h *Handler) Uninstall(name string) {
	h.mu.Lock()
	delete(h.layers, name)
	h.mu.Unlock()
}

// Layers returns the installed layers sorted by name
func (h *Handler) Layers() []LayerEntry {
	h.mu.RLock()
	out := make([]LayerEntry, 0, len(h.layers))
	for name, l := range h.layers {
		out = append(out, LayerEntry{Name: name, Kind: l.kind})
	}
	h.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Register mounts the tile routes on mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /tiles/{layer}/{z}/{x}/{y}", h.handleTile)
	mux.HandleFunc("GET /layers", h.handleLayers)
	mux.HandleFunc("GET /healthcheck", h.handleHealth)
}

func (h *Handler) handleTile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("layer")
	h.mu.RLock()
	l, ok := h.layers[name]
	h.mu.RUnlock()
	if !ok {
		http.Error(w, "unknown layer", http.StatusNotFound)
		return
	}

	z, errZ := strconv.Atoi(r.PathValue("z"))
	x, errX := strconv.Atoi(r.PathValue("x"))
	y, errY := strconv.Atoi(r.PathValue("y"))
	if errZ != nil || errX != nil || errY != nil {
		http.Error(w, "tile coordinates must be integers", http.StatusBadRequest)
		return
	}

	target, ok := l.source.TileURL(z, x, y)
	if !ok {
		http.Error(w, "tile out of range", http.StatusNotFound)
		return
	}
	h.logger.Debug("tile redirect", "layer", name, "z", z, "x", x, "y", y)
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *Handler) handleLayers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.Layers()); err != nil {
		h.logger.Error("failed to encode layers", "error", err)
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
