package formbuilder

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/storage"
	"github.com/goliatone/go-formbuilder/pkg/testsupport"
)

func TestNew_PersistsThroughStorageConfig(t *testing.T) {
	ctx := context.Background()
	cfg := storage.Config{Driver: storage.DriverSQLite, Path: filepath.Join(t.TempDir(), "fb.db")}

	app, err := New(ctx, WithStorage(cfg))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := app.Builder().AddField(ctx, model.FieldInput{Label: "Name", Type: "text"}); err != nil {
		t.Fatalf("AddField: %v", err)
	}
	if err := app.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := New(ctx, WithStorage(cfg))
	if err != nil {
		t.Fatalf("New (reopen): %v", err)
	}
	defer reopened.Close()
	if got := model.Labels(reopened.Builder().Fields()); len(got) != 1 || got[0] != "Name" {
		t.Fatalf("expected persisted field, got %v", got)
	}
}

func TestApp_RenderDefault(t *testing.T) {
	ctx := context.Background()
	app, err := New(ctx)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer app.Close()

	if err := app.Builder().ReplaceFields(ctx, testsupport.SampleFields()); err != nil {
		t.Fatalf("ReplaceFields: %v", err)
	}
	out, err := app.Render(ctx, "", "Signup", render.RenderOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(out), "<title>Signup</title>") {
		t.Fatalf("expected title in output")
	}

	if _, err := app.Render(ctx, "missing", "", render.RenderOptions{}); err == nil {
		t.Fatalf("expected unknown renderer error")
	}
}

func TestApp_Handler(t *testing.T) {
	app, err := New(context.Background())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer app.Close()

	h, err := app.Handler()
	if err != nil {
		t.Fatalf("Handler: %v", err)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestRenderFields(t *testing.T) {
	out, err := RenderFields(context.Background(), testsupport.SampleFields(), "", render.RenderOptions{Preview: true})
	if err != nil {
		t.Fatalf("RenderFields: %v", err)
	}
	if !strings.Contains(string(out), "Subscribe") {
		t.Fatalf("expected field labels in output")
	}

	dup := []model.Field{{ID: "1", Label: "A", Type: model.FieldTypeText}, {ID: "1", Label: "B", Type: model.FieldTypeText}}
	if _, err := RenderFields(context.Background(), dup, "", render.RenderOptions{}); !errors.Is(err, builder.ErrInvalidFields) {
		t.Fatalf("expected ErrInvalidFields, got %v", err)
	}
}

func TestEmbeddedFS(t *testing.T) {
	if _, err := fs.ReadFile(EmbeddedTemplates(), "page.tmpl"); err != nil {
		t.Fatalf("expected page template: %v", err)
	}
	if _, err := fs.ReadFile(EmbeddedAssets(), "formbuilder.css"); err != nil {
		t.Fatalf("expected stylesheet: %v", err)
	}
}

func TestDefaultRegistry(t *testing.T) {
	registry, err := DefaultRegistry()
	if err != nil {
		t.Fatalf("DefaultRegistry: %v", err)
	}
	if got := strings.Join(registry.List(), ","); got != "tui,vanilla" {
		t.Fatalf("unexpected renderers %q", got)
	}
	terminal, err := registry.Get("tui")
	if err != nil {
		t.Fatalf("get tui: %v", err)
	}
	if terminal.ContentType() != "application/json" {
		t.Fatalf("tui renderer should answer JSON, got %q", terminal.ContentType())
	}
}
