package geo

import "math"

// AntimeridianThreshold is the longitude jump, in degrees, above which two consecutive
// coordinates are treated as crossing the ±180° line. A jump of exactly 180° does not split.
const AntimeridianThreshold = 180

// Coord is a longitude/latitude pair in degrees
type Coord struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Segment splits an ordered coordinate sequence into sub-sequences that never cross the
// antimeridian. No crossing point is interpolated: the gap is left open rather than drawing a
// line across the whole map. The returned slices never alias coords.
func Segment(coords []Coord) [][]Coord {
	if len(coords) == 0 {
		return nil
	}

	segments := make([][]Coord, 0, 1)
	current := []Coord{coords[0]}

	for i := 1; i < len(coords); i++ {
		if math.Abs(coords[i].Lon-coords[i-1].Lon) > AntimeridianThreshold {
			segments = append(segments, current)
			current = []Coord{coords[i]}
			continue
		}
		current = append(current, coords[i])
	}

	return append(segments, current)
}
