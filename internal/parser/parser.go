package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/saviobatista/telemetry-map/internal/types"
)

// Field positions of a telemetry line: TARGET,PACKET,ITEM,VALUE[,TIME_NS]
const (
	fieldTarget = iota
	fieldPacket
	fieldItem
	fieldValue
	fieldTime

	minFields = fieldValue + 1
	maxFields = fieldTime + 1
)

// ParseLine parses one telemetry line. Lines without a packet time are stamped with received.
func ParseLine(raw string, received time.Time) (*types.TelemetryValue, error) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return nil, fmt.Errorf("empty telemetry line")
	}

	fields := strings.Split(line, ",")
	if len(fields) < minFields || len(fields) > maxFields {
		return nil, fmt.Errorf("invalid telemetry line: expected %d or %d fields, got %d", minFields, maxFields, len(fields))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	for _, idx := range []int{fieldTarget, fieldPacket, fieldItem} {
		if fields[idx] == "" {
			return nil, fmt.Errorf("invalid telemetry line: empty name in field %d", idx+1)
		}
	}

	value, err := strconv.ParseFloat(fields[fieldValue], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid value: %w", err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, fmt.Errorf("invalid value: %s is not finite", fields[fieldValue])
	}

	ts := received.UnixNano()
	if len(fields) == maxFields && fields[fieldTime] != "" {
		ts, err = strconv.ParseInt(fields[fieldTime], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid time: %w", err)
		}
		if ts < 0 {
			return nil, fmt.Errorf("invalid time: %d is negative", ts)
		}
	}

	return &types.TelemetryValue{
		Target:    fields[fieldTarget],
		Packet:    fields[fieldPacket],
		Item:      fields[fieldItem],
		Value:     value,
		TimeNanos: ts,
	}, nil
}
