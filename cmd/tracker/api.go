package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/saviobatista/telemetry-map/internal/geo"
	"github.com/saviobatista/telemetry-map/internal/marker"
	"github.com/saviobatista/telemetry-map/internal/track"
	"github.com/saviobatista/telemetry-map/internal/types"
)

const maxBodySize = 1 << 20

type trackSummary struct {
	ID        string          `json:"id"`
	SessionID string          `json:"sessionId"`
	Color     string          `json:"color"`
	TrailTime float64         `json:"trailTime"`
	Current   *types.Position `json:"current,omitempty"`
	Samples   int             `json:"samples"`
}

type trackDetail struct {
	trackSummary
	Position  geo.Feature `json:"position"`
	Trail     geo.Feature `json:"trail"`
	Waypoints geo.Feature `json:"waypoints"`
}

type markerPosition struct {
	Lon float64 `json:"lon" validate:"longitude"`
	Lat float64 `json:"lat" validate:"latitude"`
}

type api struct {
	tracker  *MapTracker
	validate *validator.Validate
}

// registerRoutes mounts the track, marker and tile endpoints on mux
func (t *MapTracker) registerRoutes(mux *http.ServeMux) {
	a := &api{tracker: t, validate: validator.New()}

	mux.HandleFunc("GET /tracks", a.listTracks)
	mux.HandleFunc("GET /tracks/{id}", a.getTrack)
	mux.HandleFunc("POST /tracks/{id}/clear", a.clearTrack)
	mux.HandleFunc("DELETE /tracks/{id}", a.removeTrack)

	mux.HandleFunc("GET /markers", a.listMarkers)
	mux.HandleFunc("PUT /markers/{name}", a.putMarker)
	mux.HandleFunc("POST /markers/{name}/position", a.moveMarker)
	mux.HandleFunc("DELETE /markers/{name}", a.deleteMarker)
	mux.HandleFunc("GET /icons", a.listIcons)

	mux.HandleFunc("GET /stats", a.getStats)

	t.tiles.Register(mux)
}

func summarize(s track.Snapshot) trackSummary {
	return trackSummary{
		ID:        s.ID,
		SessionID: s.SessionID,
		Color:     s.Color,
		TrailTime: s.TrailTime.Seconds(),
		Current:   s.Current,
		Samples:   len(s.Samples),
	}
}

func (a *api) listTracks(w http.ResponseWriter, r *http.Request) {
	ids := a.tracker.registry.IDs()
	out := make([]trackSummary, 0, len(ids))
	for _, id := range ids {
		if s, ok := a.tracker.registry.Get(id); ok {
			out = append(out, summarize(s))
		}
	}
	a.writeJSON(w, http.StatusOK, out)
}

func (a *api) getTrack(w http.ResponseWriter, r *http.Request) {
	s, ok := a.tracker.registry.Get(r.PathValue("id"))
	if !ok {
		http.Error(w, track.ErrUnknownTrack.Error(), http.StatusNotFound)
		return
	}
	a.writeJSON(w, http.StatusOK, trackDetail{
		trackSummary: summarize(s),
		Position:     s.Geometries.Position,
		Trail:        s.Geometries.Trail,
		Waypoints:    s.Geometries.Waypoints,
	})
}

func (a *api) clearTrack(w http.ResponseWriter, r *http.Request) {
	a.trackAction(w, a.tracker.registry.Clear(r.Context(), r.PathValue("id")))
}

func (a *api) removeTrack(w http.ResponseWriter, r *http.Request) {
	a.trackAction(w, a.tracker.registry.Remove(r.Context(), r.PathValue("id")))
}

func (a *api) trackAction(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, track.ErrUnknownTrack):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		a.tracker.logger.Error("Track action failed", "error", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
	}
}

func (a *api) listMarkers(w http.ResponseWriter, r *http.Request) {
	names := a.tracker.markers.Names()
	out := make([]types.MarkerConfig, 0, len(names))
	for _, name := range names {
		if m, ok := a.tracker.markers.Get(name); ok {
			out = append(out, m.Config())
		}
	}
	a.writeJSON(w, http.StatusOK, out)
}

func (a *api) putMarker(w http.ResponseWriter, r *http.Request) {
	var cfg types.MarkerConfig
	if !a.decode(w, r, &cfg) {
		return
	}
	cfg.Name = r.PathValue("name")
	if err := a.validate.Struct(cfg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := a.tracker.PlaceMarker(r.Context(), cfg); err != nil {
		a.tracker.logger.Error("Failed to place marker", "marker", cfg.Name, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) moveMarker(w http.ResponseWriter, r *http.Request) {
	var pos markerPosition
	if !a.decode(w, r, &pos) {
		return
	}
	if err := a.validate.Struct(pos); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	a.markerAction(w, a.tracker.MoveMarker(r.Context(), r.PathValue("name"), pos.Lon, pos.Lat))
}

func (a *api) deleteMarker(w http.ResponseWriter, r *http.Request) {
	a.markerAction(w, a.tracker.DeleteMarker(r.Context(), r.PathValue("name")))
}

func (a *api) markerAction(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, marker.ErrUnknownMarker):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		a.tracker.logger.Error("Marker action failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (a *api) listIcons(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, a.tracker.markers.Catalog().Icons())
}

func (a *api) getStats(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, a.tracker.stats.GetStats())
}

func (a *api) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (a *api) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.tracker.logger.Error("Failed to encode response", "error", err)
	}
}
