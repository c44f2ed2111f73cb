package migrate

import (
	"context"
	"database/sql"

	"polysplit/internal/logger"
)

// Statements：建表语句，使用 IF NOT EXISTS 以便每次启动重复执行
var Statements = []string{
	`CREATE TABLE IF NOT EXISTS _split_jobs (
        id TEXT PRIMARY KEY,
        mode TEXT NOT NULL,
        value DOUBLE PRECISION NOT NULL,
        crs TEXT NOT NULL,
        merged BOOLEAN NOT NULL DEFAULT FALSE,
        input_polygons INT NOT NULL,
        input_area DOUBLE PRECISION NOT NULL,
        pieces INT NOT NULL,
        requested INT NOT NULL,
        duration_ms BIGINT NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE INDEX IF NOT EXISTS idx_split_jobs_created ON _split_jobs(created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS _split_stats_daily (
        day DATE PRIMARY KEY,
        jobs BIGINT NOT NULL DEFAULT 0,
        pieces BIGINT NOT NULL DEFAULT 0
    )`,
}

// EnsureSchema：首次运行自动创建作业记录与日统计表
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, s := range Statements {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
