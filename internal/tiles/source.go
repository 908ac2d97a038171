package tiles

// Source maps a tile coordinate to the URL it is fetched from. ok is false for tiles outside
// the source's grid.
type Source interface {
	TileURL(z, x, y int) (url string, ok bool)
}
