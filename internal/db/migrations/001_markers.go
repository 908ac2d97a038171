package migrations

// MarkersSchema creates the marker store
var MarkersSchema = &Migration{
	ID:   "001_markers",
	Name: "001_markers",
	UpSQL: `
		CREATE TABLE IF NOT EXISTS markers (
			name TEXT PRIMARY KEY,
			latitude DOUBLE PRECISION NOT NULL CHECK (latitude BETWEEN -90 AND 90),
			longitude DOUBLE PRECISION NOT NULL CHECK (longitude BETWEEN -180 AND 180),
			icon TEXT NOT NULL DEFAULT '',
			color TEXT NOT NULL DEFAULT '',
			show_label BOOLEAN NOT NULL DEFAULT TRUE,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`,
	DownSQL: `
		DROP TABLE IF EXISTS markers;
	`,
}
