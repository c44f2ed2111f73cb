// 包 api：集中注册 HTTP 路由，主入口挂载到 API_BASE 前缀
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"polysplit/internal/logger"
	"polysplit/internal/partition"
	"polysplit/internal/results"
	"polysplit/internal/service"
)

// Options：路由参数
type Options struct {
	// Base：对外暴露的前缀，用于拼接下载地址
	Base string
	// MaxUpload：上传体积上限（字节）
	MaxUpload int64
	// Merge：请求未指定 merge 时的默认值
	Merge bool
}

// splitRequest：JSON 请求体
type splitRequest struct {
	GeoJSON json.RawMessage `json:"geojson"`
	Mode    string          `json:"mode"`
	Value   float64         `json:"value"`
	Merge   *bool           `json:"merge"`
	CRS     string          `json:"crs"`
}

type splitResponse struct {
	Message  string `json:"message"`
	Download string `json:"download"`
	*service.Result
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError：校验类错误返回 400 并带上具体约束，其余返回 5xx
func writeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case partition.KindOf(err) != 0:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: partition.KindOf(err).String()})
	case errors.As(err, &tooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "upload too large"})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		logger.L().Error("api_internal_error", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func badParam(msg string) error {
	return &partition.Error{Kind: partition.KindInvalidParameter, Msg: msg}
}

// parseRequest：支持 multipart 表单（file/mode/value，兼容旧字段 val）与 JSON 请求体
func parseRequest(r *http.Request, opt Options) (service.Request, error) {
	req := service.Request{Merge: opt.Merge}
	ct, _, _ := mime.ParseMediaType(r.Header.Get("content-type"))
	var (
		mode  string
		value string
		merge string
	)
	switch ct {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(opt.MaxUpload); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return req, err
			}
			return req, badParam("malformed multipart body: " + err.Error())
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			return req, &partition.Error{Kind: partition.KindInvalidShape, Msg: "file is required"}
		}
		defer f.Close()
		if req.GeoJSON, err = io.ReadAll(f); err != nil {
			return req, err
		}
		mode = r.FormValue("mode")
		value = r.FormValue("value")
		if value == "" {
			value = r.FormValue("val")
		}
		merge = r.FormValue("merge")
		req.CRS = r.FormValue("crs")
	case "application/json", "application/geo+json", "":
		var body splitRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return req, err
			}
			return req, badParam("malformed json body: " + err.Error())
		}
		if len(body.GeoJSON) == 0 {
			return req, &partition.Error{Kind: partition.KindInvalidShape, Msg: "geojson is required"}
		}
		req.GeoJSON = body.GeoJSON
		mode = body.Mode
		value = strconv.FormatFloat(body.Value, 'g', -1, 64)
		if body.Merge != nil {
			merge = strconv.FormatBool(*body.Merge)
		}
		req.CRS = body.CRS
	default:
		return req, badParam("unsupported content type " + ct)
	}
	if mode == "" || value == "" {
		return req, badParam("mode and value are required")
	}
	m, err := partition.ParseMode(mode)
	if err != nil {
		return req, err
	}
	req.Mode = m
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return req, badParam("value must be a number, got " + strconv.Quote(value))
	}
	req.Value = v
	if merge != "" {
		b, err := strconv.ParseBool(merge)
		if err != nil {
			return req, badParam("merge must be true or false")
		}
		req.Merge = b
	}
	return req, nil
}

// BuildRoutes：构建 API 路由
func BuildRoutes(sp *service.Splitter, opt Options) *http.ServeMux {
	if opt.MaxUpload <= 0 {
		opt.MaxUpload = 32 << 20
	}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /split", func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, opt.MaxUpload)
		req, err := parseRequest(r, opt)
		if err != nil {
			writeError(w, err)
			return
		}
		res, err := sp.Split(r.Context(), req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, splitResponse{
			Message:  "File processed",
			Download: opt.Base + "/download/" + res.ID + ".geojson",
			Result:   res,
		})
	})

	mux.HandleFunc("GET /download/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSuffix(r.PathValue("id"), ".geojson")
		b, err := sp.Result(id)
		switch {
		case errors.Is(err, results.ErrNotFound), errors.Is(err, results.ErrBadID):
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "result not found"})
			return
		case err != nil:
			writeError(w, err)
			return
		}
		w.Header().Set("content-type", "application/geo+json")
		w.Header().Set("content-disposition", `inline; filename="`+id+`.geojson"`)
		_, _ = w.Write(b)
	})

	mux.HandleFunc("GET /modes", func(w http.ResponseWriter, r *http.Request) {
		type modeInfo struct {
			Name    string `json:"name"`
			ByCount bool   `json:"by_count"`
		}
		out := make([]modeInfo, 0, len(partition.Modes))
		for _, m := range partition.Modes {
			out = append(out, modeInfo{Name: string(m), ByCount: m.ByCount()})
		}
		writeJSON(w, http.StatusOK, out)
	})

	mux.HandleFunc("GET /stats", func(w http.ResponseWriter, r *http.Request) {
		st := sp.Store()
		if st == nil {
			writeJSON(w, http.StatusOK, map[string]any{"enabled": false})
			return
		}
		t, err := st.GetTotals(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"enabled": true, "totals": t})
	})

	mux.HandleFunc("GET /jobs", func(w http.ResponseWriter, r *http.Request) {
		st := sp.Store()
		if st == nil {
			writeJSON(w, http.StatusOK, []any{})
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		jobs, err := st.RecentJobs(r.Context(), limit)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, jobs)
	})

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}
