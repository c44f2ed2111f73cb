// 包 service：切分流水线编排（解析 → 合并/拆分 → 投影 → 切分 → 反投影 → 编码 → 缓存与落盘）
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"polysplit/internal/cache"
	"polysplit/internal/geojsonio"
	"polysplit/internal/logger"
	"polysplit/internal/metrics"
	"polysplit/internal/partition"
	"polysplit/internal/reproject"
	"polysplit/internal/results"
	"polysplit/internal/store"
	"polysplit/internal/union"

	"github.com/paulmach/orb"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// Config：流水线参数
type Config struct {
	Options partition.Options
	// Workers：逐多边形切分时的并发上限
	Workers int
	// CacheTTL：Redis 结果缓存有效期
	CacheTTL time.Duration
	// MemCache：Redis 未启用时进程内缓存的条目数，0 表示不缓存
	MemCache int
	// DefaultCRS：请求与输入均未声明坐标系时使用；为空即 WGS84
	DefaultCRS string
}

// Request：一次切分请求
type Request struct {
	GeoJSON []byte
	Mode    partition.Mode
	Value   float64
	// Merge：true 时先合并全部多边形再切分；false 时逐个多边形独立切分
	Merge bool
	// CRS：覆盖输入声明的坐标系；均为空时使用 Config.DefaultCRS，再为空按 WGS84 处理
	CRS string
}

// Result：切分结果；GeoJSON 为输入坐标系下的 FeatureCollection
type Result struct {
	ID            string          `json:"id"`
	Mode          partition.Mode  `json:"mode"`
	Value         float64         `json:"value"`
	CRS           string          `json:"crs"`
	Merged        bool            `json:"merged"`
	InputPolygons int             `json:"input_polygons"`
	// UsedPolygons：实际参与切分的多边形数；合并失败退回首个多边形时为 1
	UsedPolygons  int             `json:"used_polygons"`
	InputArea     float64         `json:"input_area_m2"`
	Requested     int             `json:"requested"`
	Pieces        int             `json:"pieces"`
	Cached        bool            `json:"cached"`
	GeoJSON       json.RawMessage `json:"result_geojson"`
}

// Splitter：无状态编排器；Redis、Store、Dir 均可为 nil
type Splitter struct {
	cfg   Config
	rc    *redis.Client
	st    *store.Store
	dir   *results.Dir
	mem   *cache.LRU[[]byte]
	clock func() time.Time
}

func New(cfg Config, rc *redis.Client, st *store.Store, dir *results.Dir) *Splitter {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	s := &Splitter{cfg: cfg, rc: rc, st: st, dir: dir, clock: time.Now}
	if rc == nil && cfg.MemCache > 0 {
		s.mem = cache.NewLRU[[]byte](cfg.MemCache, cfg.CacheTTL)
	}
	return s
}

// RequestID：由参数、输入内容与引擎配置计算的稳定编号，同一请求命中同一缓存与结果文件
// 约束：搜索参数或默认坐标系变化时编号随之变化，旧缓存不会被误用。
func RequestID(req Request, cfg Config) string {
	o := cfg.Options.Normalized()
	h := sha256.New()
	for _, part := range []string{
		string(req.Mode),
		strconv.FormatFloat(req.Value, 'g', -1, 64),
		strconv.FormatBool(req.Merge),
		req.CRS,
		cfg.DefaultCRS,
		strconv.Itoa(o.Steps),
		strconv.FormatFloat(o.Tolerance, 'g', -1, 64),
		strconv.FormatFloat(o.BandTolerance, 'g', -1, 64),
		strconv.Itoa(o.BandIterations),
		strconv.Itoa(o.MaxPieces),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	h.Write(req.GeoJSON)
	return hex.EncodeToString(h.Sum(nil))[:32]
}

func invalid(kind partition.Kind, err error) error {
	return &partition.Error{Kind: kind, Msg: err.Error()}
}

// Split：执行完整流水线
// 约束：参数与输入校验失败时不做任何几何计算；搜索耗尽只体现在 Pieces < Requested。
func (s *Splitter) Split(ctx context.Context, req Request) (res *Result, err error) {
	begin := s.clock()
	l := logger.L()
	metrics.SplitRequestsTotal.WithLabelValues(string(req.Mode)).Inc()
	defer func() {
		metrics.SplitDurationMs.WithLabelValues(string(req.Mode)).Observe(float64(s.clock().Sub(begin).Milliseconds()))
		if err != nil {
			kind := partition.KindOf(err).String()
			metrics.SplitErrorsTotal.WithLabelValues(kind).Inc()
			l.Info("split_error", "mode", req.Mode, "value", req.Value, "kind", kind, "err", err)
		}
	}()
	if err := partition.CheckValue(req.Mode, req.Value); err != nil {
		return nil, err
	}
	id := RequestID(req, s.cfg)
	if cached := s.cacheGet(ctx, id); cached != nil {
		return cached, nil
	}

	in, err := geojsonio.Decode(req.GeoJSON)
	if err != nil {
		return nil, invalid(partition.KindInvalidShape, err)
	}
	crs := req.CRS
	if crs == "" {
		crs = in.CRS
	}
	if crs == "" {
		crs = s.cfg.DefaultCRS
	}
	conv, err := reproject.ForCRS(crs)
	if err != nil {
		return nil, invalid(partition.KindInvalidParameter, err)
	}

	var (
		groups []orb.Ring
		merged bool
		used   = len(in.Polygons)
	)
	if req.Merge && len(in.Polygons) > 1 {
		ring, ok := union.Best(in.Polygons)
		merged = ok
		if !ok {
			used = 1
			metrics.UnionFallbackTotal.Inc()
			l.Warn("union_fallback_first", "polygons", len(in.Polygons), "dropped", len(in.Polygons)-1)
		}
		groups = []orb.Ring{ring}
	} else {
		for _, p := range in.Polygons {
			groups = append(groups, p[0])
		}
	}
	l.Debug("split_begin", "id", id, "mode", req.Mode, "value", req.Value, "groups", len(groups), "crs", conv.Name())

	pieces, requested, area, err := s.splitGroups(ctx, groups, conv, req)
	if err != nil {
		return nil, err
	}
	body, err := geojsonio.Encode(pieces)
	if err != nil {
		return nil, err
	}
	res = &Result{
		ID:            id,
		Mode:          req.Mode,
		Value:         req.Value,
		CRS:           conv.Name(),
		Merged:        merged,
		InputPolygons: len(in.Polygons),
		UsedPolygons:  used,
		InputArea:     area,
		Requested:     requested,
		Pieces:        len(pieces),
		GeoJSON:       body,
	}
	metrics.PiecesProduced.Observe(float64(res.Pieces))
	if res.Pieces < res.Requested {
		metrics.ShortfallTotal.Inc()
		l.Info("split_shortfall", "id", id, "requested", res.Requested, "pieces", res.Pieces)
	}
	s.persist(ctx, res, s.clock().Sub(begin))
	l.Info("split_done", "id", id, "mode", req.Mode, "pieces", res.Pieces, "duration_ms", s.clock().Sub(begin).Milliseconds())
	return res, nil
}

// splitGroups：每个外环一个协程，结果按输入顺序拼接
func (s *Splitter) splitGroups(ctx context.Context, groups []orb.Ring, conv reproject.Converter, req Request) ([]geojsonio.Piece, int, float64, error) {
	type out struct {
		pieces    []geojsonio.Piece
		requested int
		area      float64
	}
	outs := make([]out, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, ring := range groups {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			planar := conv.ToPlanar(ring)
			rings, err := partition.Split(planar, req.Mode, req.Value, s.cfg.Options)
			if err != nil {
				return err
			}
			o := out{requested: partition.Requested(planar, req.Mode, req.Value), area: partition.Area(planar)}
			for _, r := range rings {
				o.pieces = append(o.pieces, geojsonio.Piece{Ring: conv.FromPlanar(r), Area: partition.Area(r), Group: i})
			}
			outs[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, 0, err
	}
	var (
		pieces    []geojsonio.Piece
		requested int
		area      float64
	)
	for _, o := range outs {
		pieces = append(pieces, o.pieces...)
		requested += o.requested
		area += o.area
	}
	return pieces, requested, area, nil
}

func cacheKey(id string) string { return "split:" + id }

func (s *Splitter) cacheGet(ctx context.Context, id string) *Result {
	var b []byte
	switch {
	case s.rc != nil:
		v, err := s.rc.Get(ctx, cacheKey(id)).Bytes()
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				logger.L().Debug("cache_get_error", "id", id, "err", err)
			}
			metrics.CacheMissesTotal.Inc()
			return nil
		}
		b = v
	case s.mem != nil:
		v, ok := s.mem.Get(id)
		if !ok {
			metrics.CacheMissesTotal.Inc()
			return nil
		}
		b = v
	default:
		return nil
	}
	var res Result
	if err := json.Unmarshal(b, &res); err != nil {
		metrics.CacheMissesTotal.Inc()
		return nil
	}
	metrics.CacheHitsTotal.Inc()
	res.Cached = true
	// 结果文件可能已被清理，命中缓存时补写
	if s.dir != nil {
		if _, err := s.dir.Load(id); errors.Is(err, results.ErrNotFound) {
			_ = s.dir.Save(id, res.GeoJSON)
		}
	}
	return &res
}

// persist：落盘、写缓存、记录作业；任何一步失败只记日志，不影响返回
func (s *Splitter) persist(ctx context.Context, res *Result, took time.Duration) {
	l := logger.L()
	if s.dir != nil {
		if err := s.dir.Save(res.ID, res.GeoJSON); err != nil {
			l.Error("result_save_error", "id", res.ID, "err", err)
		}
	}
	if b, err := json.Marshal(res); err == nil {
		switch {
		case s.rc != nil:
			if err := s.rc.Set(ctx, cacheKey(res.ID), b, s.cfg.CacheTTL).Err(); err != nil {
				l.Debug("cache_set_error", "id", res.ID, "err", err)
			}
		case s.mem != nil:
			s.mem.Set(res.ID, b)
		}
	}
	if s.st != nil {
		err := s.st.RecordJob(ctx, store.Job{
			ID:            res.ID,
			Mode:          string(res.Mode),
			Value:         res.Value,
			CRS:           res.CRS,
			Merged:        res.Merged,
			InputPolygons: res.InputPolygons,
			InputArea:     res.InputArea,
			Pieces:        res.Pieces,
			Requested:     res.Requested,
			DurationMs:    took.Milliseconds(),
		})
		if err != nil {
			l.Error("job_record_error", "id", res.ID, "err", err)
		}
	}
}

// Result：按编号读取已落盘的结果
func (s *Splitter) Result(id string) ([]byte, error) {
	if s.dir == nil {
		return nil, results.ErrNotFound
	}
	return s.dir.Load(id)
}

// Store：返回作业存储，未启用时为 nil
func (s *Splitter) Store() *store.Store { return s.st }
