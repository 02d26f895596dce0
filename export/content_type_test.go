package export

import "testing"

func TestContentTypeForFormat_SQLite(t *testing.T) {
	if got := contentTypeForFormat(FormatSQLite); got != "application/vnd.sqlite3" {
		t.Fatalf("expected sqlite content type, got %q", got)
	}
}

func TestDownloadFormatFor_JSON(t *testing.T) {
	got := DownloadFormatFor(FormatJSON)
	if got.Extension != "json" || got.ContentType != "application/json" {
		t.Fatalf("unexpected json download format: %+v", got)
	}
}

func TestNormalizeFormat_Aliases(t *testing.T) {
	cases := map[Format]Format{
		"":       FormatJSON,
		" JSON ": FormatJSON,
		"jsonl":  FormatNDJSON,
		"excel":  FormatXLSX,
		"db":     FormatSQLite,
		"csv":    FormatCSV,
	}
	for in, want := range cases {
		if got := NormalizeFormat(in); got != want {
			t.Fatalf("NormalizeFormat(%q) = %q, want %q", in, got, want)
		}
	}
}
