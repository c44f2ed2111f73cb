package partition

import (
	"math"
	"strings"
	"testing"

	"github.com/paulmach/orb"
)

func TestSplitSquareCount2(t *testing.T) {
	pieces, err := Split(square(), ModeCount, 2, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(pieces) != 2 {
		t.Fatalf("got %d pieces, want 2", len(pieces))
	}
	for i, p := range pieces {
		near(t, "piece area", Area(p), 50, 0.05*50)
		if p[0] != p[len(p)-1] {
			t.Errorf("piece %d is not closed: %v", i, p)
		}
	}
	near(t, "sum", totalArea(pieces), 100, 1e-6)
}

func TestSplitEqualAreaFirstWithinTolerance(t *testing.T) {
	// canonical order i=0, j=2, si=1, sj=1 already hits the target exactly
	pieces, err := SplitEqualArea(square(), 2, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	diff(t, orb.Ring{{1, 0}, {10, 0}, {10, 10}, {9, 10}}, pieces[0])
	diff(t, orb.Ring{{9, 10}, {0, 10}, {0, 0}, {1, 0}}, pieces[1])
}

func TestSplitEqualAreaConvex(t *testing.T) {
	ring := regular(8, 10)
	for count := 1; count <= 4; count++ {
		pieces, err := SplitEqualArea(ring, count, DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		if len(pieces) != count {
			t.Errorf("count %d: got %d pieces", count, len(pieces))
		}
		want := Area(ring)
		if rel := math.Abs(totalArea(pieces)-want) / want; rel > 1e-6 {
			t.Errorf("count %d: area sum off by %v", count, rel)
		}
	}
}

func TestSplitEqualAreaExhausts(t *testing.T) {
	tri := orb.Ring{{0, 0}, {10, 0}, {0, 10}}
	pieces, err := SplitEqualArea(tri, 3, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(pieces) != 1 {
		t.Fatalf("got %d pieces, want the triangle itself", len(pieces))
	}
	near(t, "area", Area(pieces[0]), 50, 1e-9)
}

func TestSplitByArea(t *testing.T) {
	rect := orb.Ring{{0, 0}, {20, 0}, {20, 10}, {0, 10}}
	tests := []struct {
		area float64
		want int
	}{
		{50, 4},
		{45, 4},
		{200, 1},
		{1000, 1},
	}
	for _, tt := range tests {
		pieces, err := SplitByArea(rect, tt.area, DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		if len(pieces) > tt.want || len(pieces) == 0 {
			t.Errorf("area %v: got %d pieces, want at most %d", tt.area, len(pieces), tt.want)
		}
		near(t, "sum", totalArea(pieces), 200, 1e-6)
	}
}

func TestSplitHorizontalSquare(t *testing.T) {
	pieces, err := Split(square(), ModeHorizontalCount, 4, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(pieces) != 4 {
		t.Fatalf("got %d bands, want 4", len(pieces))
	}
	prevMax := math.Inf(-1)
	for i, p := range pieces {
		b := p.Bound()
		near(t, "band area", Area(p), 25, 0.03*25)
		near(t, "band height", b.Max[1]-b.Min[1], 2.5, 0.1)
		if b.Min[1] < prevMax-1e-9 {
			t.Errorf("band %d starts at %v below previous top %v", i, b.Min[1], prevMax)
		}
		prevMax = b.Max[1]
	}
	near(t, "sum", totalArea(pieces), 100, 1e-6)
	near(t, "top", prevMax, 10, 1e-9)
}

func TestSplitHorizontalByArea(t *testing.T) {
	pieces, err := SplitHorizontalByArea(square(), 20, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(pieces) != 5 {
		t.Fatalf("got %d bands, want 5", len(pieces))
	}
	near(t, "sum", totalArea(pieces), 100, 1e-6)
}

func TestSplitHorizontalConcave(t *testing.T) {
	u := orb.Ring{{0, 0}, {9, 0}, {9, 9}, {6, 9}, {6, 4}, {3, 4}, {3, 9}, {0, 9}}
	pieces, err := SplitHorizontalEqualArea(u, 3, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(pieces) != 3 {
		t.Fatalf("got %d bands, want 3", len(pieces))
	}
	near(t, "sum", totalArea(pieces), 66, 1e-6)
}

func TestFindBandFallback(t *testing.T) {
	// a single iteration cannot hit 1% on this target, so the fixed-fraction cut is used
	opts := DefaultOptions()
	opts.BandIterations = 1
	cut, band := FindBand(Close(square()), 0, 10, 30, 4, opts)
	near(t, "cut", cut, 2.5, 1e-12)
	near(t, "area", Area(band), 25, 1e-9)
}

func TestFindChordTooFewEdges(t *testing.T) {
	if _, ok := FindChord(orb.Ring{{0, 0}, {1, 0}, {0, 1}}, 0.25, DefaultOptions()); ok {
		t.Error("triangle has no usable edge pairs")
	}
}

func TestFindChordBestWhenNoneWithinTolerance(t *testing.T) {
	opts := DefaultOptions()
	opts.Tolerance = 1e-12
	cut, ok := FindChord(square(), 33, opts)
	if !ok {
		t.Fatal("expected a best-effort chord")
	}
	// every sampled chord of the square yields a multiple of 5, so 35 is the closest
	near(t, "diff", cut.Diff, 2, 1e-9)
	near(t, "first", Area(cut.First), 35, 1e-9)
	near(t, "pieces", Area(cut.First)+Area(cut.Second), 100, 1e-9)
}

func TestSplitDirectional(t *testing.T) {
	// long rectangle rotated by 30 degrees
	a := math.Pi / 6
	c, s := math.Cos(a), math.Sin(a)
	var ring orb.Ring
	for _, p := range []orb.Point{{0, 0}, {30, 0}, {30, 6}, {0, 6}} {
		ring = append(ring, orb.Point{p[0]*c - p[1]*s, p[0]*s + p[1]*c})
	}
	pieces, err := Split(ring, ModeDirectionalCount, 3, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(pieces) != 3 {
		t.Fatalf("got %d pieces, want 3", len(pieces))
	}
	for _, p := range pieces {
		near(t, "piece", Area(p), 60, 0.03*60)
	}
	near(t, "sum", totalArea(pieces), 180, 1e-6)
}

func TestFitFrameVertical(t *testing.T) {
	f := fitFrame(orb.Ring{{0, 0}, {0, 10}, {0, 5}})
	if f.dx != 0 || f.dy != 1 {
		t.Errorf("vertical spread should fall back to the y axis, got (%v, %v)", f.dx, f.dy)
	}
	p := orb.Point{3, -7}
	q := f.toWorld(f.toLocal(p))
	near(t, "x", q[0], p[0], 1e-12)
	near(t, "y", q[1], p[1], 1e-12)
}

func TestValidation(t *testing.T) {
	opts := DefaultOptions()
	tests := []struct {
		name  string
		ring  orb.Ring
		mode  Mode
		value float64
		kind  Kind
	}{
		{"zero count", square(), ModeCount, 0, KindInvalidParameter},
		{"fractional count", square(), ModeCount, 2.5, KindInvalidParameter},
		{"negative horizontal", square(), ModeHorizontalCount, -3, KindInvalidParameter},
		{"zero area", square(), ModeArea, 0, KindInvalidParameter},
		{"nan area", square(), ModeHorizontalArea, math.NaN(), KindInvalidParameter},
		{"too many pieces", square(), ModeArea, 1e-9, KindInvalidParameter},
		{"missing ring", nil, ModeCount, 2, KindInvalidShape},
		{"two points", orb.Ring{{0, 0}, {1, 1}}, ModeCount, 2, KindInvalidShape},
		{"closed two points", orb.Ring{{0, 0}, {1, 1}, {0, 0}}, ModeArea, 1, KindInvalidShape},
		{"non-finite", orb.Ring{{0, 0}, {math.Inf(1), 0}, {0, 1}}, ModeCount, 2, KindInvalidShape},
		{"unknown mode", square(), Mode("diagonal"), 2, KindUnknownMode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pieces, err := Split(tt.ring, tt.mode, tt.value, opts)
			if pieces != nil {
				t.Errorf("got partial output %v", pieces)
			}
			if !IsKind(err, tt.kind) {
				t.Errorf("got error %v, want kind %v", err, tt.kind)
			}
		})
	}
	if _, err := SplitEqualArea(square(), 0, opts); !IsKind(err, KindInvalidParameter) {
		t.Errorf("SplitEqualArea(count=0): got %v", err)
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{
		"count":            ModeCount,
		"AREA":             ModeArea,
		"horizontal_count": ModeHorizontalCount,
		" horizontal-area": ModeHorizontalArea,
		"directional-area": ModeDirectionalArea,
		"0":                ModeCount,
		"1":                ModeArea,
	} {
		got, err := ParseMode(in)
		if err != nil {
			t.Errorf("ParseMode(%q): %v", in, err)
			continue
		}
		diff(t, want, got)
	}
	if _, err := ParseMode("grid"); KindOf(err) != KindUnknownMode {
		t.Errorf("ParseMode(grid): got %v", err)
	}
}

func TestRequested(t *testing.T) {
	cases := []struct {
		mode  Mode
		value float64
		want  int
	}{
		{ModeCount, 4, 4},
		{ModeHorizontalCount, 7, 7},
		{ModeArea, 30, 3},
		{ModeArea, 1000, 1},
		{ModeDirectionalArea, 25, 4},
		{ModeCount, 2.5, 0},
		{ModeArea, -1, 0},
	}
	for _, c := range cases {
		if got := Requested(square(), c.mode, c.value); got != c.want {
			t.Errorf("Requested(%s, %v) = %d, want %d", c.mode, c.value, got, c.want)
		}
	}
}

func TestCountLimitMessage(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  string
	}{
		{"above int32", 1e10, "exceeds the limit"},
		{"above max pieces", 20000, "exceeds the limit"},
		{"infinite", math.Inf(1), "positive integer"},
		{"fractional", 1.5, "positive integer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split(square(), ModeCount, tt.value, DefaultOptions())
			if !IsKind(err, KindInvalidParameter) {
				t.Fatalf("got %v, want invalid parameter", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
