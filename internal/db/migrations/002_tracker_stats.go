package migrations

// TrackerStatsSchema creates the periodic tracker statistics table
var TrackerStatsSchema = &Migration{
	ID:   "002_tracker_stats",
	Name: "002_tracker_stats",
	UpSQL: `
		CREATE TABLE IF NOT EXISTS tracker_stats (
			time TIMESTAMPTZ NOT NULL,
			received_samples BIGINT NOT NULL,
			accepted_samples BIGINT NOT NULL,
			rejected_samples BIGINT NOT NULL,
			evicted_samples BIGINT NOT NULL,
			created_tracks BIGINT NOT NULL,
			removed_tracks BIGINT NOT NULL,
			cleared_trails BIGINT NOT NULL,
			active_tracks BIGINT NOT NULL,
			processing_time_ms BIGINT NOT NULL,
			uptime_seconds BIGINT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tracker_stats_time ON tracker_stats (time DESC);
	`,
	DownSQL: `
		DROP TABLE IF EXISTS tracker_stats;
	`,
}
