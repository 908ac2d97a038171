package tiles

import (
	"errors"
	"testing"
)

func TestNewXYZSource(t *testing.T) {
	tests := []struct {
		name     string
		template string
		wantErr  bool
	}{
		{"standard", "https://tile.example.com/{z}/{x}/{y}.png", false},
		{"tms flipped", "https://tile.example.com/{z}/{x}/{-y}.png", false},
		{"missing z", "https://tile.example.com/{x}/{y}.png", true},
		{"missing x", "https://tile.example.com/{z}/{y}.png", true},
		{"missing y", "https://tile.example.com/{z}/{x}.png", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewXYZSource(tt.template)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTemplate) {
					t.Errorf("expected ErrInvalidTemplate, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestXYZSourceTileURL(t *testing.T) {
	src, err := NewXYZSource("https://tile.example.com//{z}/{x}/{y}.png")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		z, x, y int
		want    string
		ok      bool
	}{
		{0, 0, 0, "https://tile.example.com/0/0/0.png", true},
		{3, 5, 7, "https://tile.example.com/3/5/7.png", true},
		{3, 8, 0, "", false},
		{3, 0, 8, "", false},
		{-1, 0, 0, "", false},
		{2, -1, 0, "", false},
		{31, 0, 0, "", false},
	}

	for _, tt := range tests {
		got, ok := src.TileURL(tt.z, tt.x, tt.y)
		if ok != tt.ok || got != tt.want {
			t.Errorf("TileURL(%d,%d,%d) = (%q, %v), want (%q, %v)", tt.z, tt.x, tt.y, got, ok, tt.want, tt.ok)
		}
	}
}

func TestXYZSourceFlippedRow(t *testing.T) {
	src, err := NewXYZSource("https://tms.example.com/{z}/{x}/{-y}.png")
	if err != nil {
		t.Fatal(err)
	}

	got, ok := src.TileURL(2, 1, 0)
	if !ok || got != "https://tms.example.com/2/1/3.png" {
		t.Errorf("got (%q, %v), want flipped row 3", got, ok)
	}
}
