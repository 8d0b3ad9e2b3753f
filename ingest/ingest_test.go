package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/enms-tools/enbfit/baseline"
	"github.com/enms-tools/enbfit/errs"
)

const boilerYAML = `id: boiler-2023
drivers:
  - {slot: X1, label: HDD, unit: degC.day}
  - {slot: X3, label: Production, unit: t}
points:
  - {period: 2023-01, monitored: 1250.5, drivers: [412, null, 80]}
  - {period: 2023-02, monitored: 1100, drivers: [380, null, 75]}
  - {period: "2023-03-01", monitored: 990, drivers: [null, null, 70]}
`

const boilerCSV = `#id,boiler-2023
#driver,X1,HDD,degC.day
#driver,X2,未使用
period,monitored,X1,X3
2023-01,1250.5,412,80
2023-02,1100,380,75

2023-03,990,-,70
`

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2023-04", time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)},
		{"2023/04", time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)},
		{" 2023-04-15 ", time.Date(2023, 4, 15, 0, 0, 0, 0, time.UTC)},
		{"2023-04-15 06:30:00", time.Date(2023, 4, 15, 6, 30, 0, 0, time.UTC)},
		{"2023-04-15T06:30:00Z", time.Date(2023, 4, 15, 6, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePeriod(tt.in)
			require.NoError(t, err)
			require.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	_, err := ParsePeriod("April")
	require.ErrorIs(t, err, errs.ErrInvalidFormat)
}

func TestParseDriverCell(t *testing.T) {
	for _, in := range []string{"", " ", "-", baseline.UnusedLabel} {
		v, err := parseDriverCell(in)
		require.NoError(t, err)
		require.False(t, v.Valid, "cell %q", in)
	}

	v, err := parseDriverCell(" 12.5 ")
	require.NoError(t, err)
	require.Equal(t, baseline.Some(12.5), v)

	_, err = parseDriverCell("abc")
	require.ErrorIs(t, err, errs.ErrInvalidFormat)
}

func requireBoiler(t *testing.T, b *baseline.Baseline) {
	t.Helper()

	require.Equal(t, "boiler-2023", b.ID)
	require.Equal(t, []baseline.Slot{baseline.X1, baseline.X3}, b.UsedSlots())
	require.Equal(t, "HDD", b.Spec(baseline.X1).Label)
	require.Equal(t, "degC.day", b.Spec(baseline.X1).Unit)
	require.Equal(t, 3, b.Len())

	p := b.Points[0]
	require.Equal(t, 1250.5, p.Monitored)
	x1, ok := p.Driver(baseline.X1)
	require.True(t, ok)
	require.Equal(t, 412.0, x1)

	_, ok = b.Points[2].Driver(baseline.X1)
	require.False(t, ok)
	x3, ok := b.Points[2].Driver(baseline.X3)
	require.True(t, ok)
	require.Equal(t, 70.0, x3)
}

func TestReadYAML(t *testing.T) {
	b, err := ReadYAML(strings.NewReader(boilerYAML))
	require.NoError(t, err)
	requireBoiler(t, b)
	require.Equal(t, "Production", b.Spec(baseline.X3).Label)
}

func TestReadYAMLErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"syntax", "id: [", errs.ErrInvalidFormat},
		{"unknown field", "id: a\ncolour: red\n", errs.ErrInvalidFormat},
		{"bad slot", "id: a\ndrivers:\n  - {slot: X9, label: T}\n", errs.ErrInvalidFormat},
		{"bad period", "id: a\npoints:\n  - {period: soon, monitored: 1}\n", errs.ErrInvalidFormat},
		{"too many drivers", "id: a\npoints:\n  - {period: 2023-01, monitored: 1, drivers: [1,2,3,4,5,6]}\n", errs.ErrInvalidFormat},
		{"missing id", "points: []\n", errs.ErrEmptyBaselineID},
		{"unused slot value", "id: a\npoints:\n  - {period: 2023-01, monitored: 1, drivers: [5]}\n", errs.ErrInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadYAML(strings.NewReader(tt.doc))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReadYAMLLenient(t *testing.T) {
	doc := "id: a\npoints:\n  - {period: 2023-01, monitored: 1, drivers: [5]}\n"
	b, err := ReadYAML(strings.NewReader(doc), baseline.WithLenientUnused())
	require.NoError(t, err)
	_, ok := b.Points[0].Driver(baseline.X1)
	require.False(t, ok)
}

func TestReadCSV(t *testing.T) {
	b, err := ReadCSV(strings.NewReader(boilerCSV), "fallback")
	require.NoError(t, err)
	requireBoiler(t, b)
	require.Equal(t, "X3", b.Spec(baseline.X3).Label, "undeclared column captioned by slot")
	require.False(t, b.Spec(baseline.X2).Used)
}

func TestReadCSVFallbackID(t *testing.T) {
	doc := "Monitored, Period, x2\n10,2023-01,1\n12,2023-02,\n"
	b, err := ReadCSV(strings.NewReader(doc), "from-file")
	require.NoError(t, err)
	require.Equal(t, "from-file", b.ID)
	require.Equal(t, []baseline.Slot{baseline.X2}, b.UsedSlots())
	require.Equal(t, 12.0, b.Points[1].Monitored)
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"empty", "", errs.ErrInvalidFormat},
		{"metadata only", "#id,a\n", errs.ErrInvalidFormat},
		{"missing monitored", "period,X1\n2023-01,1\n", errs.ErrInvalidFormat},
		{"duplicate column", "period,monitored,X1,x1\n", errs.ErrInvalidFormat},
		{"bad monitored", "period,monitored\n2023-01,lots\n", errs.ErrInvalidFormat},
		{"bad driver", "period,monitored,X1\n2023-01,1,abc\n", errs.ErrInvalidFormat},
		{"bad driver row", "#driver,X7,T\nperiod,monitored\n", errs.ErrInvalidFormat},
		{"duplicate period", "period,monitored\n2023-01,1\n2023-01,2\n", errs.ErrDuplicatePeriod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.doc), "id")
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	b, err := LoadFile(writeFile(t, dir, "a.yml", boilerYAML))
	require.NoError(t, err)
	requireBoiler(t, b)

	b, err = LoadFile(writeFile(t, dir, "site-7.csv", "period,monitored,X1\n2023-01,1,2\n"))
	require.NoError(t, err)
	require.Equal(t, "site-7", b.ID)

	_, err = LoadFile(writeFile(t, dir, "a.json", "{}"))
	require.ErrorIs(t, err, errs.ErrInvalidFormat)

	_, err = LoadFile(filepath.Join(dir, "missing.csv"))
	require.ErrorIs(t, err, errs.ErrBaselineNotFound)
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "boiler-2023.yaml", boilerYAML)
	writeFile(t, dir, "site-7.csv", "period,monitored,X1\n2023-01,1,2\n")
	writeFile(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.csv"), 0o700))

	src, err := NewDirSource(dir, nil)
	require.NoError(t, err)

	ids, err := src.IDs()
	require.NoError(t, err)
	require.Equal(t, []string{"boiler-2023", "site-7"}, ids)

	ctx := context.Background()
	b, err := src.Load(ctx, "boiler-2023")
	require.NoError(t, err)
	requireBoiler(t, b)

	b, err = src.Load(ctx, "site-7")
	require.NoError(t, err)
	require.Equal(t, 1, b.Len())

	for _, id := range []string{"nope", "", "../boiler-2023", ".hidden"} {
		_, err = src.Load(ctx, id)
		require.ErrorIs(t, err, errs.ErrBaselineNotFound, "id %q", id)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = src.Load(cancelled, "site-7")
	require.ErrorIs(t, err, context.Canceled)

	_, err = NewDirSource(filepath.Join(dir, "site-7.csv"), nil)
	require.Error(t, err)
}
