// 包 store：PostgreSQL 数据访问层，记录切分作业与日统计
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"polysplit/internal/logger"

	_ "github.com/lib/pq"
)

// Store：持有连接池
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// Job：一次切分作业的元数据（不含几何）
type Job struct {
	ID            string    `json:"id"`
	Mode          string    `json:"mode"`
	Value         float64   `json:"value"`
	CRS           string    `json:"crs"`
	Merged        bool      `json:"merged"`
	InputPolygons int       `json:"input_polygons"`
	InputArea     float64   `json:"input_area_m2"`
	Pieces        int       `json:"pieces"`
	Requested     int       `json:"requested"`
	DurationMs    int64     `json:"duration_ms"`
	CreatedAt     time.Time `json:"created_at"`
}

// RecordJob：写入作业并累加当日统计；同一编号重复提交只更新时间与耗时
func (s *Store) RecordJob(ctx context.Context, j Job) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	_, err = tx.ExecContext(ctx, `INSERT INTO _split_jobs(id, mode, value, crs, merged, input_polygons, input_area, pieces, requested, duration_ms)
        VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        ON CONFLICT (id) DO UPDATE SET duration_ms=EXCLUDED.duration_ms, created_at=now()`,
		j.ID, j.Mode, j.Value, j.CRS, j.Merged, j.InputPolygons, j.InputArea, j.Pieces, j.Requested, j.DurationMs,
	)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO _split_stats_daily(day, jobs, pieces) VALUES(current_date, 1, $1)
        ON CONFLICT (day) DO UPDATE SET jobs=_split_stats_daily.jobs+1, pieces=_split_stats_daily.pieces+EXCLUDED.pieces`, j.Pieces)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	logger.L().Debug("job_recorded", "id", j.ID, "mode", j.Mode, "pieces", j.Pieces)
	return nil
}

// Totals：累计与当日作业数
type Totals struct {
	Jobs        int64 `json:"jobs"`
	Pieces      int64 `json:"pieces"`
	TodayJobs   int64 `json:"today_jobs"`
	TodayPieces int64 `json:"today_pieces"`
}

func (s *Store) GetTotals(ctx context.Context) (*Totals, error) {
	var t Totals
	if err := s.db.QueryRowContext(ctx, "SELECT COALESCE(SUM(jobs),0), COALESCE(SUM(pieces),0) FROM _split_stats_daily").Scan(&t.Jobs, &t.Pieces); err != nil {
		return nil, err
	}
	err := s.db.QueryRowContext(ctx, "SELECT jobs, pieces FROM _split_stats_daily WHERE day=current_date").Scan(&t.TodayJobs, &t.TodayPieces)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return &t, nil
}

const (
	defaultRecentJobs = 50
	maxRecentJobs     = 500
)

// recentLimit：非正数或超过上限时回退到默认条数
func recentLimit(limit int) int {
	if limit <= 0 || limit > maxRecentJobs {
		return defaultRecentJobs
	}
	return limit
}

// RecentJobs：按时间倒序返回最近 limit 条作业
func (s *Store) RecentJobs(ctx context.Context, limit int) ([]Job, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, mode, value, crs, merged, input_polygons, input_area, pieces, requested, duration_ms, created_at
        FROM _split_jobs ORDER BY created_at DESC LIMIT $1`, recentLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Job
	for rows.Next() {
		var j Job
		if err := rows.Scan(&j.ID, &j.Mode, &j.Value, &j.CRS, &j.Merged, &j.InputPolygons, &j.InputArea, &j.Pieces, &j.Requested, &j.DurationMs, &j.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}
