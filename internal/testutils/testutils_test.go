package testutils

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/saviobatista/telemetry-map/internal/parser"
)

func TestTelemetryLine(t *testing.T) {
	testCases := []struct {
		value float64
		want  string
	}{
		{179.5, "ISS,POSITION,LON,179.5,42"},
		{-0.25, "ISS,POSITION,LON,-0.25,42"},
		{180, "ISS,POSITION,LON,180,42"},
	}

	for _, tc := range testCases {
		got := TelemetryLine("ISS", "POSITION", "LON", tc.value, 42)
		if got != tc.want {
			t.Errorf("TelemetryLine(%v) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestTelemetryLine_Parses(t *testing.T) {
	line := TelemetryLine("ISS", "POSITION", "LAT", 51.64, 1_700_000_000_000_000_000)

	v, err := parser.ParseLine(line, time.Now())
	if err != nil {
		t.Fatalf("ParseLine() failed: %v", err)
	}
	if v.Item != "LAT" || v.Value != 51.64 || v.TimeNanos != 1_700_000_000_000_000_000 {
		t.Errorf("Unexpected value %+v", v)
	}
}

func TestTrackValues(t *testing.T) {
	cfg := TestTrack("ISS")
	values := TrackValues(cfg, -179, 0.5, 7)

	if len(values) != 2 {
		t.Fatalf("Expected 2 values, got %d", len(values))
	}
	if values[0].Item != "LON" || values[0].Value != -179 {
		t.Errorf("Unexpected longitude value %+v", values[0])
	}
	if values[1].Item != "LAT" || values[1].Value != 0.5 {
		t.Errorf("Unexpected latitude value %+v", values[1])
	}
	for _, v := range values {
		if v.Target != "ISS" || v.Packet != "POSITION" || v.TimeNanos != 7 {
			t.Errorf("Unexpected value header %+v", v)
		}
	}
}

func TestWaitForCondition_Success(t *testing.T) {
	var calls atomic.Int32
	err := WaitForCondition(func() bool {
		return calls.Add(1) >= 3
	}, time.Second)

	if err != nil {
		t.Errorf("WaitForCondition() failed: %v", err)
	}
}

func TestWaitForCondition_Immediate(t *testing.T) {
	start := time.Now()
	if err := WaitForCondition(func() bool { return true }, time.Second); err != nil {
		t.Errorf("WaitForCondition() failed: %v", err)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Error("Expected an immediately true condition to return at once")
	}
}

func TestWaitForCondition_Timeout(t *testing.T) {
	err := WaitForCondition(func() bool { return false }, 50*time.Millisecond)
	if err == nil {
		t.Fatal("Expected timeout error")
	}
	if err.Error() != "timeout waiting for condition" {
		t.Errorf("Unexpected error: %v", err)
	}
}
