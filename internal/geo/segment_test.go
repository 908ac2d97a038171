package geo

import (
	"reflect"
	"testing"
)

func coords(pairs ...[2]float64) []Coord {
	out := make([]Coord, len(pairs))
	for i, p := range pairs {
		out[i] = Coord{Lon: p[0], Lat: p[1]}
	}
	return out
}

func TestSegment(t *testing.T) {
	tests := []struct {
		name  string
		input []Coord
		want  [][]Coord
	}{
		{
			name:  "empty input",
			input: nil,
			want:  nil,
		},
		{
			name:  "single point",
			input: coords([2]float64{10, 5}),
			want:  [][]Coord{coords([2]float64{10, 5})},
		},
		{
			name:  "no crossing",
			input: coords([2]float64{10, 0}, [2]float64{20, 1}, [2]float64{30, 2}),
			want:  [][]Coord{coords([2]float64{10, 0}, [2]float64{20, 1}, [2]float64{30, 2})},
		},
		{
			name:  "antimeridian split",
			input: coords([2]float64{170, 0}, [2]float64{-170, 0}),
			want:  [][]Coord{coords([2]float64{170, 0}), coords([2]float64{-170, 0})},
		},
		{
			name:  "split only at the last pair",
			input: coords([2]float64{10, 0}, [2]float64{20, 0}, [2]float64{179, 0}, [2]float64{-179.5, 0}),
			want: [][]Coord{
				coords([2]float64{10, 0}, [2]float64{20, 0}, [2]float64{179, 0}),
				coords([2]float64{-179.5, 0}),
			},
		},
		{
			name:  "exactly 180 degrees does not split",
			input: coords([2]float64{90, 0}, [2]float64{-90, 0}),
			want:  [][]Coord{coords([2]float64{90, 0}, [2]float64{-90, 0})},
		},
		{
			name: "multiple crossings",
			input: coords(
				[2]float64{178, 1}, [2]float64{-178, 2}, [2]float64{-176, 3},
				[2]float64{179, 4}, [2]float64{177, 5},
			),
			want: [][]Coord{
				coords([2]float64{178, 1}),
				coords([2]float64{-178, 2}, [2]float64{-176, 3}),
				coords([2]float64{179, 4}, [2]float64{177, 5}),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Segment(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Segment() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSegment_ConcatenationReproducesInput(t *testing.T) {
	input := coords(
		[2]float64{-10, 0}, [2]float64{100, 1}, [2]float64{179.9, 2}, [2]float64{-179.9, 3},
		[2]float64{-100, 4}, [2]float64{90, 5}, [2]float64{-95, 6}, [2]float64{170, 7},
	)

	var flat []Coord
	for _, seg := range Segment(input) {
		if len(seg) == 0 {
			t.Fatal("Segment() returned an empty segment")
		}
		flat = append(flat, seg...)
	}

	if !reflect.DeepEqual(flat, input) {
		t.Errorf("concatenated segments = %v, want %v", flat, input)
	}
}

func TestSegment_DoesNotAliasInput(t *testing.T) {
	input := coords([2]float64{1, 1}, [2]float64{2, 2})
	out := Segment(input)

	out[0][0].Lon = 99
	if input[0].Lon != 1 {
		t.Errorf("mutating the output changed the input: %v", input)
	}
}
