package exporthttp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-gridexport/adapters/exportapi"
	"github.com/goliatone/go-gridexport/export"
	"github.com/goliatone/go-gridexport/locale"
	"golang.org/x/text/language"
)

func testProvider() export.GridProvider {
	table := export.NewTable("people", []export.Column{
		{ID: "name", Field: "name"},
		{ID: "age", Field: "age"},
		{ID: "edit", Kind: export.ColumnAction},
	}, []export.Row{
		{ID: "1", Values: map[string]any{"name": "Ann", "age": 30}},
		{ID: "2", Values: map[string]any{"name": "Bo"}},
	})
	return export.NewGridCatalog(table)
}

func TestHandler_DownloadJSON(t *testing.T) {
	handler := NewHandler(Config{Provider: testProvider()})

	req := httptest.NewRequest(http.MethodGet, "/exports/people", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "attachment") {
		t.Fatalf("expected Content-Disposition attachment")
	}
	want := `[{"name":"Ann","age":"30"},{"name":"Bo","age":null}]`
	if strings.TrimSpace(rec.Body.String()) != want {
		t.Fatalf("expected %s, got %s", want, rec.Body.String())
	}
}

func TestHandler_ErrorIsJSON(t *testing.T) {
	handler := NewHandler(Config{Provider: testProvider()})

	req := httptest.NewRequest(http.MethodGet, "/exports/people?mode=visible", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
	var payload exportapi.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Error.Code != "invalid_mode" {
		t.Fatalf("unexpected code %q", payload.Error.Code)
	}
}

func TestHandler_RememberMeCookieDrivesCaption(t *testing.T) {
	chain := locale.NewChain(language.English, locale.RememberMeResolver{Default: language.English})
	handler := SessionMiddleware("", NewHandler(Config{Provider: testProvider(), Locales: chain}))

	req := httptest.NewRequest(http.MethodGet, "/exports/people/preview", nil)
	req.AddCookie(&http.Cookie{Name: DefaultLocaleCookie, Value: "fr_FR"})
	req.AddCookie(&http.Cookie{Name: DefaultRememberMeCookie, Value: "token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var payload exportapi.PreviewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Caption != "Exporter en JSON" {
		t.Fatalf("unexpected caption %q", payload.Caption)
	}
}

func TestHandler_RememberMeBeatsAcceptLanguage(t *testing.T) {
	chain := locale.NewChain(language.English, locale.RememberMeResolver{Default: language.English})
	handler := SessionMiddleware("", NewHandler(Config{Provider: testProvider(), Locales: chain}))

	req := httptest.NewRequest(http.MethodGet, "/exports/people/preview?format=xlsx", nil)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.AddCookie(&http.Cookie{Name: DefaultLocaleCookie, Value: "es"})
	req.AddCookie(&http.Cookie{Name: DefaultRememberMeCookie, Value: "token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var payload exportapi.PreviewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Caption != "Exportar a Excel" {
		t.Fatalf("unexpected caption %q", payload.Caption)
	}
}

func TestHandler_AnonymousFallsBackToChain(t *testing.T) {
	chain := locale.NewChain(language.English, locale.RememberMeResolver{Default: language.German})
	handler := SessionMiddleware("", NewHandler(Config{Provider: testProvider(), Locales: chain}))

	req := httptest.NewRequest(http.MethodGet, "/exports/people/preview?format=csv", nil)
	req.AddCookie(&http.Cookie{Name: DefaultLocaleCookie, Value: "fr"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var payload exportapi.PreviewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Caption != "Export to CSV" {
		t.Fatalf("unexpected caption %q", payload.Caption)
	}
}

func TestHandler_RegisterRoutes(t *testing.T) {
	mux := http.NewServeMux()
	NewHandler(Config{Provider: testProvider(), BasePath: "/admin/exports"}).RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/exports/people?format=csv", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "name,age\nAnn,30\nBo,\n" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestNewDownloader(t *testing.T) {
	table := export.NewTable("people", []export.Column{{ID: "name", Field: "name"}}, []export.Row{
		{ID: "1", Values: map[string]any{"name": "Ann"}},
	})
	rec := httptest.NewRecorder()

	result, err := export.NewExporter(export.WithFormat(export.FormatNDJSON)).
		Download(t.Context(), NewDownloader(rec), table, export.SelectionAll)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if result.Records != 1 {
		t.Fatalf("expected 1 record, got %d", result.Records)
	}
	if rec.Header().Get("Content-Type") != "application/x-ndjson" {
		t.Fatalf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
	if rec.Body.String() != "{\"name\":\"Ann\"}\n" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}
