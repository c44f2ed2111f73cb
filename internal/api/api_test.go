package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"polysplit/internal/partition"
	"polysplit/internal/results"
	"polysplit/internal/service"
)

const square = `{"type":"Polygon","coordinates":[[[0,0],[10,0],[10,10],[0,10],[0,0]]]}`

func newServer(t *testing.T, maxUpload int64) *httptest.Server {
	t.Helper()
	dir, err := results.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	sp := service.New(service.Config{Options: partition.DefaultOptions()}, nil, nil, dir)
	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", BuildRoutes(sp, Options{Base: "/api", MaxUpload: maxUpload, Merge: true})))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatal(err)
	}
}

func TestSplitJSON(t *testing.T) {
	srv := newServer(t, 0)
	body := `{"geojson":` + square + `,"mode":"count","value":2,"crs":"EPSG:3857"}`
	resp, err := http.Post(srv.URL+"/api/split", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var out struct {
		Message  string          `json:"message"`
		Download string          `json:"download"`
		ID       string          `json:"id"`
		Pieces   int             `json:"pieces"`
		GeoJSON  json.RawMessage `json:"result_geojson"`
	}
	decode(t, resp, &out)
	if out.Pieces != 2 || out.Download != "/api/download/"+out.ID+".geojson" {
		t.Errorf("unexpected response %+v", out)
	}

	dl, err := http.Get(srv.URL + out.Download)
	if err != nil {
		t.Fatal(err)
	}
	defer dl.Body.Close()
	if dl.StatusCode != http.StatusOK || dl.Header.Get("content-type") != "application/geo+json" {
		t.Fatalf("download status %d, type %s", dl.StatusCode, dl.Header.Get("content-type"))
	}
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(dl.Body)
	if buf.String() != string(out.GeoJSON) {
		t.Error("downloaded result differs from the inline result")
	}
}

func multipartBody(t *testing.T, fields map[string]string, file string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if file != "" {
		fw, err := mw.CreateFormFile("file", "input.geojson")
		if err != nil {
			t.Fatal(err)
		}
		_, _ = fw.Write([]byte(file))
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestSplitMultipartLegacyFields(t *testing.T) {
	srv := newServer(t, 0)
	body, ct := multipartBody(t, map[string]string{"mode": "0", "val": "3", "crs": "EPSG:3857"}, square)
	resp, err := http.Post(srv.URL+"/api/split", ct, body)
	if err != nil {
		t.Fatal(err)
	}
	var out struct {
		Mode   string `json:"mode"`
		Pieces int    `json:"pieces"`
	}
	decode(t, resp, &out)
	if resp.StatusCode != http.StatusOK || out.Mode != "count" || out.Pieces != 3 {
		t.Errorf("status %d, response %+v", resp.StatusCode, out)
	}
}

func TestSplitValidationErrors(t *testing.T) {
	srv := newServer(t, 0)
	tests := []struct {
		name   string
		fields map[string]string
		file   string
		kind   string
	}{
		{"missing file", map[string]string{"mode": "count", "value": "2"}, "", "invalid_shape"},
		{"unknown mode", map[string]string{"mode": "spiral", "value": "2"}, square, "unknown_mode"},
		{"zero count", map[string]string{"mode": "count", "value": "0"}, square, "invalid_parameter"},
		{"text value", map[string]string{"mode": "area", "value": "lots"}, square, "invalid_parameter"},
		{"missing value", map[string]string{"mode": "area"}, square, "invalid_parameter"},
		{"bad merge", map[string]string{"mode": "area", "value": "5", "merge": "maybe"}, square, "invalid_parameter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := multipartBody(t, tt.fields, tt.file)
			resp, err := http.Post(srv.URL+"/api/split", ct, body)
			if err != nil {
				t.Fatal(err)
			}
			var out errorResponse
			decode(t, resp, &out)
			if resp.StatusCode != http.StatusBadRequest || out.Kind != tt.kind {
				t.Errorf("status %d, response %+v", resp.StatusCode, out)
			}
		})
	}
}

func TestSplitMalformedMultipart(t *testing.T) {
	srv := newServer(t, 0)
	truncated := "--xyz\r\nContent-Disposition: form-data; name=\"mode\"\r\n\r\ncount"
	tests := []struct {
		name string
		ct   string
		body string
	}{
		{"missing boundary", "multipart/form-data", truncated},
		{"truncated body", "multipart/form-data; boundary=xyz", truncated},
		{"garbage body", "multipart/form-data; boundary=xyz", "not a multipart body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/api/split", tt.ct, strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			var out errorResponse
			decode(t, resp, &out)
			if resp.StatusCode != http.StatusBadRequest || out.Kind != "invalid_parameter" {
				t.Errorf("status %d, response %+v", resp.StatusCode, out)
			}
			if !strings.Contains(out.Error, "malformed multipart body") {
				t.Errorf("error %q does not name the multipart body", out.Error)
			}
		})
	}
}

func TestSplitMultipartTooLarge(t *testing.T) {
	srv := newServer(t, 512)
	big := strings.Repeat(" ", 8<<10) + square
	body, ct := multipartBody(t, map[string]string{"mode": "count", "value": "2"}, big)
	resp, err := http.Post(srv.URL+"/api/split", ct, body)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status %d, want 413", resp.StatusCode)
	}
}

func TestSplitTooLarge(t *testing.T) {
	srv := newServer(t, 64)
	body := `{"geojson":` + square + `,"mode":"count","value":2,"crs":"EPSG:3857"}`
	resp, err := http.Post(srv.URL+"/api/split", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status %d, want 413", resp.StatusCode)
	}
}

func TestDownloadMissing(t *testing.T) {
	srv := newServer(t, 0)
	for _, id := range []string{"deadbeef", "not-hex"} {
		resp, err := http.Get(srv.URL + "/api/download/" + id)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s: status %d", id, resp.StatusCode)
		}
	}
}

func TestModesAndStats(t *testing.T) {
	srv := newServer(t, 0)
	resp, err := http.Get(srv.URL + "/api/modes")
	if err != nil {
		t.Fatal(err)
	}
	var modes []struct {
		Name    string `json:"name"`
		ByCount bool   `json:"by_count"`
	}
	decode(t, resp, &modes)
	if len(modes) != len(partition.Modes) || modes[0].Name != "count" || !modes[0].ByCount || modes[1].ByCount {
		t.Errorf("modes %+v", modes)
	}

	resp, err = http.Get(srv.URL + "/api/stats")
	if err != nil {
		t.Fatal(err)
	}
	var stats map[string]any
	decode(t, resp, &stats)
	if stats["enabled"] != false {
		t.Errorf("stats %v", stats)
	}
}
