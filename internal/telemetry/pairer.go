package telemetry

import (
	"sort"
	"sync"

	"github.com/saviobatista/telemetry-map/internal/types"
)

type axis int

const (
	axisLon axis = iota
	axisLat
)

type binding struct {
	trackID string
	axis    axis
}

type reading struct {
	value float64
	time  int64
	set   bool
}

type pending struct {
	lon, lat reading
}

// Pairer joins the longitude and latitude values of each configured track into samples. Two
// values pair when they carry the same packet timestamp; a newer value for one axis discards
// an older unpaired value on the other.
type Pairer struct {
	mu      sync.Mutex
	byKey   map[string][]binding
	pending map[string]*pending
}

// NewPairer builds a pairer for tracks
func NewPairer(tracks []types.TrackConfig) *Pairer {
	p := &Pairer{
		byKey:   make(map[string][]binding),
		pending: make(map[string]*pending),
	}
	for _, t := range tracks {
		lonKey := BuildKey(t.Target, t.Packet, t.LonItem)
		latKey := BuildKey(t.Target, t.Packet, t.LatItem)
		p.byKey[lonKey] = append(p.byKey[lonKey], binding{trackID: t.Name, axis: axisLon})
		p.byKey[latKey] = append(p.byKey[latKey], binding{trackID: t.Name, axis: axisLat})
		p.pending[t.Name] = &pending{}
	}
	return p
}

// Keys returns the telemetry keys the pairer consumes, sorted
func (p *Pairer) Keys() []string {
	keys := make([]string, 0, len(p.byKey))
	for k := range p.byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Offer feeds one item value and returns any samples it completes
func (p *Pairer) Offer(v types.TelemetryValue) []types.Sample {
	bindings, ok := p.byKey[BuildKey(v.Target, v.Packet, v.Item)]
	if !ok {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var out []types.Sample
	for _, b := range bindings {
		st := p.pending[b.trackID]
		mine, other := &st.lon, &st.lat
		if b.axis == axisLat {
			mine, other = &st.lat, &st.lon
		}

		if mine.set && v.TimeNanos < mine.time {
			continue
		}
		*mine = reading{value: v.Value, time: v.TimeNanos, set: true}

		if !other.set {
			continue
		}
		switch {
		case other.time == mine.time:
			out = append(out, types.Sample{
				TrackID:   b.trackID,
				Lon:       st.lon.value,
				Lat:       st.lat.value,
				TimeNanos: mine.time,
			})
			*st = pending{}
		case other.time < mine.time:
			*other = reading{}
		}
	}
	return out
}
