package exportcallback

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/goliatone/go-gridexport/export"
)

func TestProvider_LoadsRowsPerLookup(t *testing.T) {
	calls := 0
	provider := NewProvider(Source{
		Name:    "people",
		Columns: []export.Column{{ID: "name", Field: "name"}},
		Rows: func(ctx context.Context) ([]export.Row, error) {
			_ = ctx
			calls++
			return []export.Row{
				{ID: "1", Values: map[string]any{"name": "Ann"}},
				{ID: "2", Values: map[string]any{"name": "Bo"}},
			}, nil
		},
		Selected: func(ctx context.Context) ([]string, error) {
			_ = ctx
			return []string{"2"}, nil
		},
	})

	for i := 0; i < 2; i++ {
		if _, err := provider.Grid(context.Background(), "people"); err != nil {
			t.Fatalf("grid: %v", err)
		}
	}
	if calls != 2 {
		t.Fatalf("expected rows loaded per lookup, got %d calls", calls)
	}

	grid, _ := provider.Grid(context.Background(), "people")
	_, payload, err := export.NewExporter().Export(context.Background(), grid, export.SelectionCurrent)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if strings.TrimSpace(string(payload)) != `[{"name":"Bo"}]` {
		t.Fatalf("unexpected payload %s", payload)
	}
}

func TestProvider_Errors(t *testing.T) {
	boom := errors.New("boom")
	provider := NewProvider()
	if err := provider.Register(Source{Name: "x"}); err == nil {
		t.Fatalf("expected missing func error")
	}
	if err := provider.Register(Source{Name: "bad", Rows: func(context.Context) ([]export.Row, error) { return nil, boom }}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := provider.Grid(context.Background(), "bad"); !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if _, err := provider.Grid(context.Background(), "missing"); export.KindFromError(err) != export.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	names, _ := provider.Names(context.Background())
	if len(names) != 1 || names[0] != "bad" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestNewProvider_FirstNameWins(t *testing.T) {
	rows := func(name string) RowsFunc {
		return func(context.Context) ([]export.Row, error) {
			return []export.Row{{ID: "1", Values: map[string]any{"name": name}}}, nil
		}
	}
	provider := NewProvider(
		Source{Name: "people", Columns: []export.Column{{ID: "name", Field: "name"}}, Rows: rows("first")},
		Source{Name: "people", Columns: []export.Column{{ID: "name", Field: "name"}}, Rows: rows("second")},
		Source{Name: "no-rows"},
	)

	names, _ := provider.Names(context.Background())
	if len(names) != 1 || names[0] != "people" {
		t.Fatalf("unexpected names %v", names)
	}
	grid, err := provider.Grid(context.Background(), "people")
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	_, payload, err := export.NewExporter().Export(context.Background(), grid, export.SelectionAll)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if strings.TrimSpace(string(payload)) != `[{"name":"first"}]` {
		t.Fatalf("expected first source to be kept, got %s", payload)
	}
}

func TestCollect(t *testing.T) {
	rows := []export.Row{{ID: "1"}, {ID: "2"}}
	index := 0
	collect := Collect(func(ctx context.Context) (export.Row, error) {
		_ = ctx
		if index >= len(rows) {
			return export.Row{}, io.EOF
		}
		row := rows[index]
		index++
		return row, nil
	})

	got, err := collect(context.Background())
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(got) != 2 || got[1].ID != "2" {
		t.Fatalf("unexpected rows %+v", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := collect(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}
