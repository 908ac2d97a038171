package telemetry

import (
	"testing"

	"github.com/saviobatista/telemetry-map/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var issTrack = types.TrackConfig{
	Name: "ISS", Target: "ISS", Packet: "POSITION", LonItem: "LON", LatItem: "LAT",
}

func value(item string, v float64, t int64) types.TelemetryValue {
	return types.TelemetryValue{Target: "ISS", Packet: "POSITION", Item: item, Value: v, TimeNanos: t}
}

func TestPairerKeys(t *testing.T) {
	p := NewPairer([]types.TrackConfig{issTrack})

	assert.Equal(t, []string{
		"DECOM__TLM__ISS__POSITION__LAT__CONVERTED",
		"DECOM__TLM__ISS__POSITION__LON__CONVERTED",
	}, p.Keys())
}

func TestPairerJoinsEqualTimestamps(t *testing.T) {
	p := NewPairer([]types.TrackConfig{issTrack})

	assert.Empty(t, p.Offer(value("LON", 179.5, 100)))
	samples := p.Offer(value("LAT", -12.25, 100))

	require.Len(t, samples, 1)
	assert.Equal(t, types.Sample{TrackID: "ISS", Lon: 179.5, Lat: -12.25, TimeNanos: 100}, samples[0])

	// pending state is consumed
	assert.Empty(t, p.Offer(value("LAT", -12.25, 100)))
}

func TestPairerLatFirst(t *testing.T) {
	p := NewPairer([]types.TrackConfig{issTrack})

	assert.Empty(t, p.Offer(value("LAT", 1, 5)))
	samples := p.Offer(value("LON", 2, 5))
	require.Len(t, samples, 1)
	assert.Equal(t, 2.0, samples[0].Lon)
	assert.Equal(t, 1.0, samples[0].Lat)
}

func TestPairerNewerValueDiscardsStalePartner(t *testing.T) {
	p := NewPairer([]types.TrackConfig{issTrack})

	assert.Empty(t, p.Offer(value("LON", 10, 100)))
	assert.Empty(t, p.Offer(value("LAT", 20, 200)), "lon@100 is stale and dropped")
	assert.Empty(t, p.Offer(value("LON", 10, 100)), "older than the pending lat, still unpaired")

	samples := p.Offer(value("LON", 11, 200))
	require.Len(t, samples, 1)
	assert.Equal(t, types.Sample{TrackID: "ISS", Lon: 11, Lat: 20, TimeNanos: 200}, samples[0])
}

func TestPairerOlderValueIgnored(t *testing.T) {
	p := NewPairer([]types.TrackConfig{issTrack})

	p.Offer(value("LON", 10, 200))
	assert.Empty(t, p.Offer(value("LON", 9, 100)))

	samples := p.Offer(value("LAT", 5, 200))
	require.Len(t, samples, 1)
	assert.Equal(t, 10.0, samples[0].Lon)
}

func TestPairerUnknownItem(t *testing.T) {
	p := NewPairer([]types.TrackConfig{issTrack})

	assert.Nil(t, p.Offer(value("ALT", 400, 1)))
	assert.Nil(t, p.Offer(types.TelemetryValue{Target: "OTHER", Packet: "POSITION", Item: "LON"}))
}

func TestPairerSharedItems(t *testing.T) {
	a := issTrack
	b := issTrack
	b.Name = "ISS-copy"
	p := NewPairer([]types.TrackConfig{a, b})

	p.Offer(value("LON", 1, 7))
	samples := p.Offer(value("LAT", 2, 7))

	require.Len(t, samples, 2)
	ids := []string{samples[0].TrackID, samples[1].TrackID}
	assert.ElementsMatch(t, []string{"ISS", "ISS-copy"}, ids)
}
