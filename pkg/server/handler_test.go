package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/exchange"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/storage"
	"github.com/goliatone/go-formbuilder/pkg/testsupport"
	"github.com/goliatone/go-formbuilder/pkg/theme"
)

func newTestHandler(t *testing.T, fields []model.Field, fns ...OptionFn) (*Handler, *builder.Builder) {
	t.Helper()
	ctx := context.Background()
	b, err := builder.New(ctx, builder.WithStore(storage.NewMemory()))
	if err != nil {
		t.Fatalf("builder.New: %v", err)
	}
	if fields != nil {
		if err := b.ReplaceFields(ctx, fields); err != nil {
			t.Fatalf("ReplaceFields: %v", err)
		}
	}
	h, err := New(b, fns...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return h, b
}

func do(h http.Handler, req *http.Request) *http.Response {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Result()
}

func postForm(h http.Handler, path string, values url.Values) *http.Response {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return do(h, req)
}

// follow loads the redirect target carrying the flash cookie and returns the
// page body.
func follow(t *testing.T, h http.Handler, res *http.Response) string {
	t.Helper()
	if res.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d", res.StatusCode)
	}
	req := httptest.NewRequest(http.MethodGet, res.Header.Get("Location"), nil)
	for _, cookie := range res.Cookies() {
		req.AddCookie(cookie)
	}
	page := do(h, req)
	if page.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200 following redirect, got %d", page.StatusCode)
	}
	return readBody(t, page)
}

func readBody(t *testing.T, res *http.Response) string {
	t.Helper()
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(data)
}

func fieldIDs(fields []model.Field) []string {
	ids := make([]string, len(fields))
	for i, field := range fields {
		ids[i] = field.ID
	}
	return ids
}

func TestHandler_IndexRendersFields(t *testing.T) {
	h, _ := newTestHandler(t, testsupport.SampleFields())

	res := do(h, httptest.NewRequest(http.MethodGet, "/", nil))
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected HTML content-type, got %q", ct)
	}
	body := readBody(t, res)
	for _, want := range []string{"Form Builder", `name="field-1700000000000"`, "Subscribe", "No records saved yet."} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected page to contain %q", want)
		}
	}
}

func TestHandler_AddField(t *testing.T) {
	h, b := newTestHandler(t, nil)

	res := postForm(h, "/fields", url.Values{"label": {"Email"}, "type": {"text"}})
	if loc := res.Header.Get("Location"); loc != "/" {
		t.Fatalf("expected redirect to /, got %q", loc)
	}
	body := follow(t, h, res)
	if !strings.Contains(body, MsgFieldAdded) {
		t.Fatalf("expected success alert in page")
	}

	fields := b.Fields()
	if len(fields) != 1 || fields[0].Label != "Email" || fields[0].Type != model.FieldTypeText {
		t.Fatalf("unexpected fields %#v", fields)
	}
}

func TestHandler_AddFieldBlankLabel(t *testing.T) {
	h, b := newTestHandler(t, nil)

	body := follow(t, h, postForm(h, "/fields", url.Values{"label": {"   "}, "type": {"text"}}))
	if !strings.Contains(body, MsgLabelRequired) {
		t.Fatalf("expected label alert in page")
	}
	if got := len(b.Fields()); got != 0 {
		t.Fatalf("expected no fields, got %d", got)
	}
}

func TestHandler_FlashShownOnce(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	res := postForm(h, "/fields", url.Values{"label": {""}})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range res.Cookies() {
		req.AddCookie(cookie)
	}
	first := do(h, req)
	if !strings.Contains(readBody(t, first), MsgLabelRequired) {
		t.Fatalf("expected alert on first load")
	}

	var expired bool
	for _, cookie := range first.Cookies() {
		if cookie.Name == flashCookie && cookie.MaxAge < 0 {
			expired = true
		}
	}
	if !expired {
		t.Fatalf("expected flash cookie to be expired after display")
	}
}

func TestHandler_SaveRecord(t *testing.T) {
	h, b := newTestHandler(t, testsupport.SampleFields())

	res := postForm(h, "/form", url.Values{
		"field-1700000000000": {"Alice"},
		"field-1700000000001": {"30"},
		"field-1700000000004": {"true"},
		"field-1700000000005": {""},
		"action":              {"save"},
	})
	if !strings.Contains(follow(t, h, res), MsgRecordSaved) {
		t.Fatalf("expected saved alert")
	}

	records := b.Records()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	want := map[string]string{"Name": "Alice", "Age": "30", "Subscribe": "true"}
	if diff := cmp.Diff(want, records[0].Map()); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
	if b.Values().Len() != 0 {
		t.Fatalf("expected form values to reset after save")
	}
}

func TestHandler_SaveEmptyForm(t *testing.T) {
	h, b := newTestHandler(t, testsupport.SampleFields())

	body := follow(t, h, postForm(h, "/form", url.Values{"action": {"save"}}))
	if !strings.Contains(body, MsgEmptyForm) {
		t.Fatalf("expected empty form alert")
	}
	if len(b.Records()) != 0 {
		t.Fatalf("expected no records")
	}
}

func TestHandler_UpdateKeepsValues(t *testing.T) {
	h, b := newTestHandler(t, testsupport.SampleFields())

	follow(t, h, postForm(h, "/form", url.Values{
		"field-1700000000000": {"Bob"},
		"field-1700000000004": {"true"},
		"action":              {"update"},
	}))
	follow(t, h, postForm(h, "/form", url.Values{
		"field-1700000000000": {"Bob"},
		"action":              {"update"},
	}))

	if diff := cmp.Diff([]string{"Name"}, b.Values().Keys()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if len(b.Records()) != 0 {
		t.Fatalf("update must not save a record")
	}
}

func TestHandler_SaveSharedLabelKeepsFirstEntry(t *testing.T) {
	h, b := newTestHandler(t, []model.Field{
		{ID: "a", Label: "Name", Type: model.FieldTypeText, Options: []string{}},
		{ID: "b", Label: "Name", Type: model.FieldTypeText, Options: []string{}},
		{ID: "c", Label: "City", Type: model.FieldTypeText, Options: []string{}},
	})

	res := postForm(h, "/form", url.Values{
		"field-a": {"Alice"},
		"field-b": {""},
		"field-c": {""},
		"action":  {"save"},
	})
	if !strings.Contains(follow(t, h, res), MsgRecordSaved) {
		t.Fatalf("expected saved alert")
	}
	records := b.Records()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if diff := cmp.Diff(map[string]string{"Name": "Alice"}, records[0].Map()); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}

	// a later non-empty input fills the shared entry; all blank clears it
	follow(t, h, postForm(h, "/form", url.Values{"field-a": {""}, "field-b": {"Bob"}, "action": {"update"}}))
	if diff := cmp.Diff(map[string]string{"Name": "Bob"}, b.Values().Map()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	follow(t, h, postForm(h, "/form", url.Values{"field-a": {" "}, "field-b": {""}, "action": {"update"}}))
	if b.Values().Len() != 0 {
		t.Fatalf("expected shared entry cleared, got %v", b.Values().Map())
	}
}

func TestHandler_SaveKeepsSubmittedWhitespace(t *testing.T) {
	h, b := newTestHandler(t, []model.Field{{ID: "n", Label: "Notes", Type: model.FieldTypeTextarea, Options: []string{}}})

	follow(t, h, postForm(h, "/form", url.Values{"field-n": {"  line1\n  line2\n"}, "action": {"save"}}))
	records := b.Records()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if got, _ := records[0].Get("Notes"); got != "  line1\n  line2\n" {
		t.Fatalf("value should be stored as submitted, got %q", got)
	}
}

func TestHandler_ExportRecords(t *testing.T) {
	h, _ := newTestHandler(t, testsupport.SampleFields())

	body := follow(t, h, do(h, httptest.NewRequest(http.MethodGet, "/records/export?format=csv", nil)))
	if !strings.Contains(body, MsgNoRecords) {
		t.Fatalf("expected no records alert")
	}

	follow(t, h, postForm(h, "/form", url.Values{"field-1700000000000": {"Alice"}, "action": {"save"}}))

	res := do(h, httptest.NewRequest(http.MethodGet, "/records/export?format=csv", nil))
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}
	if got := res.Header.Get("Content-Disposition"); got != `attachment; filename="data.csv"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	if got := readBody(t, res); got != "Name\nAlice\n" {
		t.Fatalf("unexpected csv %q", got)
	}

	res = do(h, httptest.NewRequest(http.MethodGet, "/records/export", nil))
	if got := res.Header.Get("Content-Disposition"); got != `attachment; filename="data.json"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	var records []map[string]string
	if err := json.NewDecoder(res.Body).Decode(&records); err != nil {
		t.Fatalf("decode json export: %v", err)
	}
	if diff := cmp.Diff([]map[string]string{{"Name": "Alice"}}, records); diff != "" {
		t.Fatalf("json export mismatch (-want +got):\n%s", diff)
	}
}

func TestHandler_ExportRecordsUnknownFormat(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	res := do(h, httptest.NewRequest(http.MethodGet, "/records/export?format=pdf", nil))
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", res.StatusCode)
	}
}

func TestHandler_ExportFields(t *testing.T) {
	h, _ := newTestHandler(t, testsupport.SampleFields())

	res := do(h, httptest.NewRequest(http.MethodGet, "/fields/export?format=json", nil))
	if got := res.Header.Get("Content-Disposition"); got != `attachment; filename="form.json"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	fields, err := exchange.DecodeFields(res.Body)
	if err != nil {
		t.Fatalf("DecodeFields: %v", err)
	}
	if diff := cmp.Diff(testsupport.SampleFields(), fields); diff != "" {
		t.Fatalf("exported fields mismatch (-want +got):\n%s", diff)
	}

	res = do(h, httptest.NewRequest(http.MethodGet, "/fields/export?format=openapi", nil))
	if got := res.Header.Get("Content-Disposition"); got != `attachment; filename="form.openapi.json"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	var doc map[string]any
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		t.Fatalf("decode openapi: %v", err)
	}
	if _, ok := doc["openapi"]; !ok {
		t.Fatalf("expected openapi version key, got %v", doc)
	}
}

func TestHandler_ExportFieldsEmpty(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	body := follow(t, h, do(h, httptest.NewRequest(http.MethodGet, "/fields/export", nil)))
	if !strings.Contains(body, MsgNoFields) {
		t.Fatalf("expected no fields alert")
	}
}

func multipartImport(t *testing.T, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "form.json")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := io.WriteString(part, content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/fields/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandler_ImportFields(t *testing.T) {
	h, b := newTestHandler(t, []model.Field{{ID: "old", Label: "Old", Type: model.FieldTypeText, Options: []string{}}})

	body := follow(t, h, do(h, multipartImport(t, `[{"id":"1","label":"Color","type":"select","options":["Red","Blue"]}]`)))
	if !strings.Contains(body, MsgImported) {
		t.Fatalf("expected imported alert")
	}
	want := []model.Field{{ID: "1", Label: "Color", Type: model.FieldTypeSelect, Options: []string{"Red", "Blue"}}}
	if diff := cmp.Diff(want, b.Fields()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestHandler_ImportRejected(t *testing.T) {
	original := testsupport.SampleFields()
	h, b := newTestHandler(t, original)

	body := follow(t, h, do(h, multipartImport(t, `[{"id":"1","type":"text"}]`)))
	if !strings.Contains(body, "Error importing form.") {
		t.Fatalf("expected import error alert")
	}
	if diff := cmp.Diff(original, b.Fields()); diff != "" {
		t.Fatalf("fields changed on rejected import (-want +got):\n%s", diff)
	}
}

func TestHandler_ClearRequiresConfirmation(t *testing.T) {
	h, b := newTestHandler(t, testsupport.SampleFields())

	body := follow(t, h, postForm(h, "/fields/clear", url.Values{}))
	if !strings.Contains(body, MsgConfirmClear) {
		t.Fatalf("expected confirmation alert")
	}
	if len(b.Fields()) == 0 {
		t.Fatalf("fields cleared without confirmation")
	}

	follow(t, h, postForm(h, "/fields/clear", url.Values{"confirm": {"yes"}}))
	if len(b.Fields()) != 0 {
		t.Fatalf("expected fields to be cleared")
	}
}

func TestHandler_MoveField(t *testing.T) {
	fields := []model.Field{
		{ID: "a", Label: "A", Type: model.FieldTypeText, Options: []string{}},
		{ID: "b", Label: "B", Type: model.FieldTypeText, Options: []string{}},
		{ID: "c", Label: "C", Type: model.FieldTypeText, Options: []string{}},
	}
	h, b := newTestHandler(t, fields)

	follow(t, h, postForm(h, "/fields/a/move", url.Values{"over": {"c"}}))
	if diff := cmp.Diff([]string{"b", "c", "a"}, fieldIDs(b.Fields())); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	follow(t, h, postForm(h, "/fields/a/move", url.Values{"index": {"0"}}))
	if diff := cmp.Diff([]string{"a", "b", "c"}, fieldIDs(b.Fields())); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	body := follow(t, h, postForm(h, "/fields/missing/move", url.Values{"index": {"1"}}))
	if !strings.Contains(body, MsgFieldMissing) {
		t.Fatalf("expected missing field alert")
	}
}

func TestHandler_DeleteField(t *testing.T) {
	h, b := newTestHandler(t, testsupport.SampleFields())

	follow(t, h, postForm(h, "/fields/1700000000000/delete", url.Values{}))
	if _, ok := b.Field("1700000000000"); ok {
		t.Fatalf("expected field to be removed")
	}

	body := follow(t, h, postForm(h, "/fields/1700000000000/delete", url.Values{}))
	if !strings.Contains(body, MsgFieldMissing) {
		t.Fatalf("expected missing field alert")
	}
}

func TestHandler_ToggleTheme(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	if h.Variant() != theme.VariantLight {
		t.Fatalf("expected light default, got %q", h.Variant())
	}
	body := follow(t, h, postForm(h, "/theme", url.Values{}))
	if h.Variant() != theme.VariantDark {
		t.Fatalf("expected dark after toggle, got %q", h.Variant())
	}
	if !strings.Contains(body, `data-theme="dark"`) {
		t.Fatalf("expected dark page")
	}

	follow(t, h, postForm(h, "/theme", url.Values{"variant": {"light"}}))
	if h.Variant() != theme.VariantLight {
		t.Fatalf("expected explicit light, got %q", h.Variant())
	}
}

func TestHandler_Preview(t *testing.T) {
	h, _ := newTestHandler(t, testsupport.SampleFields())

	plain := readBody(t, do(h, httptest.NewRequest(http.MethodGet, "/", nil)))
	preview := readBody(t, do(h, httptest.NewRequest(http.MethodGet, "/?preview=1", nil)))
	if len(preview) <= len(plain) {
		t.Fatalf("expected preview overlay to add markup")
	}
	if !strings.Contains(preview, "disabled") {
		t.Fatalf("expected disabled preview inputs")
	}
}

type failingStore struct {
	storage.Store
	err error
}

func (f failingStore) Put(context.Context, string, []byte) error { return f.err }

func TestHandler_ImportPersistFailureIsCounted(t *testing.T) {
	ctx := context.Background()
	b, err := builder.New(ctx, builder.WithStore(failingStore{Store: storage.NewMemory(), err: errors.New("disk full")}))
	if err != nil {
		t.Fatalf("builder.New: %v", err)
	}
	h, err := New(b)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	body := follow(t, h, do(h, multipartImport(t, `[{"id":"1","label":"Color","type":"text"}]`)))
	if !strings.Contains(body, MsgPersistFailed) {
		t.Fatalf("expected persist failure alert")
	}
	metrics := readBody(t, do(h, httptest.NewRequest(http.MethodGet, "/metrics", nil)))
	if !strings.Contains(metrics, `formbuilder_imports_total{result="persist_failed"} 1`) {
		t.Fatalf("expected persist_failed import counted, got:\n%s", metrics)
	}
	if strings.Contains(metrics, `formbuilder_imports_total{result="ok"}`) {
		t.Fatalf("failed persist must not count as ok")
	}
}

func TestHandler_APISaveLeavesPageValues(t *testing.T) {
	h, b := newTestHandler(t, []model.Field{
		{ID: "n", Label: "Name", Type: model.FieldTypeText, Options: []string{}},
		{ID: "c", Label: "City", Type: model.FieldTypeText, Options: []string{}},
	})
	follow(t, h, postForm(h, "/form", url.Values{"field-c": {"Paris"}, "action": {"update"}}))

	req := httptest.NewRequest(http.MethodPost, "/api/records", strings.NewReader(`{"Name":"Bob"}`))
	if res := do(h, req); res.StatusCode != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", res.StatusCode)
	}
	if diff := cmp.Diff(map[string]string{"City": "Paris"}, b.Values().Map()); diff != "" {
		t.Fatalf("page values changed by API save (-want +got):\n%s", diff)
	}
	records := b.Records()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if diff := cmp.Diff(map[string]string{"Name": "Bob"}, records[0].Map()); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/records", strings.NewReader(`{}`))
	if res := do(h, req); res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422 for empty record, got %d", res.StatusCode)
	}
}

func TestHandler_APIFieldsAndRecords(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	res := do(h, httptest.NewRequest(http.MethodGet, "/api/fields", nil))
	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected JSON content-type, got %q", ct)
	}
	var fields struct {
		Data []model.Field `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&fields); err != nil {
		t.Fatalf("decode fields: %v", err)
	}
	if fields.Data == nil || len(fields.Data) != 0 {
		t.Fatalf("expected empty data array, got %#v", fields.Data)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/fields", strings.NewReader(`{"label":"Name","type":"text"}`))
	res = do(h, req)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", res.StatusCode)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/fields", strings.NewReader(`{"label":"","type":"text"}`))
	res = do(h, req)
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", res.StatusCode)
	}
	var failure errorResponse
	if err := json.NewDecoder(res.Body).Decode(&failure); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if failure.Error == "" {
		t.Fatalf("expected error message")
	}

	req = httptest.NewRequest(http.MethodPost, "/api/records", strings.NewReader(`{"Name":"Alice"}`))
	res = do(h, req)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", res.StatusCode)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/records", strings.NewReader(`{"Nope":"x"}`))
	if res := do(h, req); res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422 for unknown label, got %d", res.StatusCode)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/records", strings.NewReader(`{"Name":`))
	if res := do(h, req); res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400 for bad JSON, got %d", res.StatusCode)
	}

	res = do(h, httptest.NewRequest(http.MethodGet, "/api/records", nil))
	var records struct {
		Data []map[string]string `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&records); err != nil {
		t.Fatalf("decode records: %v", err)
	}
	if diff := cmp.Diff([]map[string]string{{"Name": "Alice"}}, records.Data); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestHandler_AssetsHealthAndMetrics(t *testing.T) {
	h, _ := newTestHandler(t, testsupport.SampleFields())

	res := do(h, httptest.NewRequest(http.MethodGet, "/assets/formbuilder.css", nil))
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected stylesheet, got %d", res.StatusCode)
	}
	if !strings.Contains(readBody(t, res), "--fb-") {
		t.Fatalf("expected css custom properties in stylesheet")
	}

	res = do(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected health 200, got %d", res.StatusCode)
	}

	do(h, httptest.NewRequest(http.MethodGet, "/", nil))
	metrics := readBody(t, do(h, httptest.NewRequest(http.MethodGet, "/metrics", nil)))
	for _, want := range []string{"formbuilder_http_requests_total", "formbuilder_fields 6", "formbuilder_records 0"} {
		if !strings.Contains(metrics, want) {
			t.Fatalf("expected metrics to contain %q", want)
		}
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	res := do(h, httptest.NewRequest(http.MethodGet, "/fields", nil))
	if res.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", res.StatusCode)
	}
}

func TestHandler_BasePath(t *testing.T) {
	h, b := newTestHandler(t, nil, WithBasePath("builder/"))

	res := postForm(h, "/builder/fields", url.Values{"label": {"Name"}})
	if loc := res.Header.Get("Location"); loc != "/builder/" {
		t.Fatalf("expected redirect to /builder/, got %q", loc)
	}
	body := follow(t, h, res)
	if !strings.Contains(body, `action="/builder/fields"`) {
		t.Fatalf("expected prefixed form actions")
	}
	if len(b.Fields()) != 1 {
		t.Fatalf("expected field to be added")
	}
	if res := do(h, httptest.NewRequest(http.MethodGet, "/builder/assets/formbuilder.css", nil)); res.StatusCode != http.StatusOK {
		t.Fatalf("expected prefixed asset, got %d", res.StatusCode)
	}
}

func TestHandler_Guard(t *testing.T) {
	h, _ := newTestHandler(t, nil, WithGuard(func(r *http.Request) error {
		if r.Header.Get("X-Token") != "secret" {
			return StatusError{Code: http.StatusUnauthorized}
		}
		return nil
	}))

	if res := do(h, httptest.NewRequest(http.MethodGet, "/", nil)); res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", res.StatusCode)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Token", "secret")
	if res := do(h, req); res.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}
}

func TestNewOptions_Defaults(t *testing.T) {
	opts := NewOptions(WithMaxImportBytes(-1), WithTitle(""), WithDefaultVariant(" DARK "), nil)
	if opts.MaxImportBytes != 1<<20 {
		t.Fatalf("expected default import limit, got %d", opts.MaxImportBytes)
	}
	if opts.Title != "Form Builder" {
		t.Fatalf("expected default title, got %q", opts.Title)
	}
	if opts.DefaultVariant != theme.VariantDark {
		t.Fatalf("expected dark variant, got %q", opts.DefaultVariant)
	}
	if opts.Logger == nil || opts.Exporters == nil || opts.Registry == nil {
		t.Fatalf("expected defaults for logger, exporters and registry")
	}
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer(Config{ShutdownTimeout: time.Second}, h, nil)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	res, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET healthz: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not stop")
	}
}
