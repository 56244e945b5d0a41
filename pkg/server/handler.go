package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/exchange"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/renderers/vanilla"
	"github.com/goliatone/go-formbuilder/pkg/theme"
)

// User facing alert texts.
const (
	MsgLabelRequired = "Label is required!"
	MsgUnknownType   = "Unknown field type."
	MsgEmptyForm     = "Fill out the form before saving!"
	MsgNoRecords     = "No records to export"
	MsgNoFields      = "No fields to export!"
	MsgImportFailed  = "Error importing form. Make sure it's a valid JSON file."
	MsgImported      = "Form imported."
	MsgRecordSaved   = "Record saved."
	MsgFieldAdded    = "Field added."
	MsgFieldRemoved  = "Field removed."
	MsgFieldsCleared = "All fields cleared."
	MsgConfirmClear  = "Confirm that you want to remove every field."
	MsgFieldMissing  = "That field no longer exists."
	MsgPersistFailed = "Changes applied but could not be saved."
)

// FormFieldPrefix prefixes input names in the fill form.
const FormFieldPrefix = "field-"

// Handler serves the form builder page, its form posts and the JSON API.
type Handler struct {
	builder   *builder.Builder
	renderer  render.Renderer
	exporters *exchange.Registry
	themes    *theme.Selector
	opts      Options
	logger    log.Logger
	flash     flash
	metrics   *metrics
	router    *mux.Router

	mu      sync.RWMutex
	variant string
}

// New builds a handler around b. The vanilla renderer and the formbuilder theme
// are used unless options supply others.
func New(b *builder.Builder, fns ...OptionFn) (*Handler, error) {
	if b == nil {
		return nil, errors.New("server: builder is required")
	}
	opts := NewOptions(fns...)

	renderer := opts.Renderer
	if renderer == nil {
		r, err := vanilla.New()
		if err != nil {
			return nil, fmt.Errorf("server: vanilla renderer: %w", err)
		}
		renderer = r
	}

	themes := opts.Themes
	if themes == nil {
		s, err := theme.NewSelector(theme.Manifest(opts.BasePath + "/assets"))
		if err != nil {
			return nil, fmt.Errorf("server: theme selector: %w", err)
		}
		themes = s
	}

	cookiePath := opts.BasePath
	if cookiePath == "" {
		cookiePath = "/"
	}

	h := &Handler{
		builder:   b,
		renderer:  renderer,
		exporters: opts.Exporters,
		themes:    themes,
		opts:      opts,
		logger:    log.With(opts.Logger, "component", "server"),
		flash:     flash{path: cookiePath},
		variant:   opts.DefaultVariant,
	}
	h.metrics = newMetrics(opts.Registry, b)
	h.router = mux.NewRouter()
	h.Routes(h.router)
	return h, nil
}

// Routes registers every route on r under the configured base path.
func (h *Handler) Routes(r *mux.Router) {
	root := r
	if h.opts.BasePath != "" {
		root = r.PathPrefix(h.opts.BasePath).Subrouter()
	}
	root.Use(h.metrics.instrument)
	if h.opts.Guard != nil {
		root.Use(h.guard)
	}

	root.HandleFunc("/", h.index).Methods(http.MethodGet)
	root.HandleFunc("/fields", h.addField).Methods(http.MethodPost)
	root.HandleFunc("/fields/clear", h.clearFields).Methods(http.MethodPost)
	root.HandleFunc("/fields/export", h.exportFields).Methods(http.MethodGet)
	root.HandleFunc("/fields/import", h.importFields).Methods(http.MethodPost)
	root.HandleFunc("/fields/{id}/move", h.moveField).Methods(http.MethodPost)
	root.HandleFunc("/fields/{id}/delete", h.deleteField).Methods(http.MethodPost)
	root.HandleFunc("/form", h.submitForm).Methods(http.MethodPost)
	root.HandleFunc("/records/export", h.exportRecords).Methods(http.MethodGet)
	root.HandleFunc("/theme", h.toggleTheme).Methods(http.MethodPost)

	api := root.PathPrefix("/api").Subrouter()
	api.HandleFunc("/fields", h.apiFields).Methods(http.MethodGet)
	api.HandleFunc("/fields", h.apiAddField).Methods(http.MethodPost)
	api.HandleFunc("/records", h.apiRecords).Methods(http.MethodGet)
	api.HandleFunc("/records", h.apiSaveRecord).Methods(http.MethodPost)

	assets := http.StripPrefix(h.opts.BasePath+"/assets/", http.FileServer(http.FS(vanilla.AssetsFS())))
	root.PathPrefix("/assets/").Handler(assets).Methods(http.MethodGet)
	root.Handle("/metrics", promhttp.HandlerFor(h.opts.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	root.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// Variant reports the active theme variant.
func (h *Handler) Variant() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.variant
}

func (h *Handler) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.opts.Guard(r); err != nil {
			code := statusOf(err)
			if code == http.StatusInternalServerError {
				code = http.StatusForbidden
			}
			http.Error(w, http.StatusText(code), code)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	snapshot := h.builder.Snapshot()
	page := render.NewPage(h.opts.Title, snapshot)

	alerts := h.flash.take(w, r)

	cfg, err := h.themes.Resolve(theme.Name, h.Variant())
	if err != nil {
		level.Warn(h.logger).Log("msg", "theme resolve failed", "variant", h.Variant(), "err", err)
		cfg = nil
	}

	body, err := h.renderer.Render(r.Context(), page, render.RenderOptions{
		Alerts:   alerts,
		Preview:  isTruthy(r.URL.Query().Get("preview")),
		Theme:    cfg,
		BasePath: h.opts.BasePath,
	})
	if err != nil {
		h.internalError(w, "render page", err)
		return
	}
	w.Header().Set("Content-Type", h.renderer.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *Handler) addField(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.redirect(w, r, errorAlert("Invalid form submission."))
		return
	}
	input := model.FieldInput{
		Label:   r.PostForm.Get("label"),
		Type:    r.PostForm.Get("type"),
		Options: r.PostForm.Get("options"),
	}
	_, err := h.builder.AddField(r.Context(), input)
	switch {
	case errors.Is(err, builder.ErrLabelRequired):
		h.redirect(w, r, errorAlert(MsgLabelRequired))
	case errors.Is(err, builder.ErrUnknownType):
		h.redirect(w, r, errorAlert(MsgUnknownType))
	case err != nil:
		h.persistFailed(w, r, err)
	default:
		h.redirect(w, r, successAlert(MsgFieldAdded))
	}
}

func (h *Handler) moveField(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.redirect(w, r, errorAlert("Invalid form submission."))
		return
	}
	id := mux.Vars(r)["id"]

	var err error
	if raw := strings.TrimSpace(r.PostForm.Get("index")); raw != "" {
		index, convErr := strconv.Atoi(raw)
		if convErr != nil {
			h.redirect(w, r, errorAlert("Invalid position."))
			return
		}
		_, err = h.builder.MoveFieldTo(r.Context(), id, index)
	} else {
		_, err = h.builder.MoveField(r.Context(), id, r.PostForm.Get("over"))
	}

	switch {
	case errors.Is(err, builder.ErrFieldNotFound):
		h.redirect(w, r, errorAlert(MsgFieldMissing))
	case err != nil:
		h.persistFailed(w, r, err)
	default:
		h.redirect(w, r)
	}
}

func (h *Handler) deleteField(w http.ResponseWriter, r *http.Request) {
	err := h.builder.RemoveField(r.Context(), mux.Vars(r)["id"])
	switch {
	case errors.Is(err, builder.ErrFieldNotFound):
		h.redirect(w, r, errorAlert(MsgFieldMissing))
	case err != nil:
		h.persistFailed(w, r, err)
	default:
		h.redirect(w, r, successAlert(MsgFieldRemoved))
	}
}

func (h *Handler) clearFields(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || r.PostForm.Get("confirm") != "yes" {
		h.redirect(w, r, errorAlert(MsgConfirmClear))
		return
	}
	if err := h.builder.Clear(r.Context()); err != nil {
		h.persistFailed(w, r, err)
		return
	}
	h.redirect(w, r, successAlert(MsgFieldsCleared))
}

func (h *Handler) exportFields(w http.ResponseWriter, r *http.Request) {
	fields := h.builder.Fields()
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))

	var (
		file exchange.File
		err  error
	)
	switch format {
	case "", string(exchange.FormatJSON):
		format = string(exchange.FormatJSON)
		file, err = exchange.ExportFields(fields)
	case "openapi":
		file, err = exchange.ExportFieldsOpenAPI(fields, exchange.OpenAPIInfo{Title: h.opts.Title})
	default:
		http.Error(w, fmt.Sprintf("unknown form export format %q", format), http.StatusBadRequest)
		return
	}
	if errors.Is(err, exchange.ErrNothingToExport) {
		h.redirect(w, r, errorAlert(MsgNoFields))
		return
	}
	if err != nil {
		h.internalError(w, "export fields", err)
		return
	}
	h.metrics.exports.WithLabelValues("fields", format).Inc()
	writeDownload(w, file)
}

func (h *Handler) importFields(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxImportBytes)
	if err := r.ParseMultipartForm(h.opts.MaxImportBytes); err != nil {
		h.importFailed(w, r, err)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		h.importFailed(w, r, err)
		return
	}
	defer file.Close()

	fields, err := h.builder.Import(r.Context(), file)
	if err != nil {
		if errors.Is(err, exchange.ErrInvalidImport) || errors.Is(err, builder.ErrInvalidFields) {
			h.importFailed(w, r, err)
			return
		}
		h.metrics.imports.WithLabelValues("persist_failed").Inc()
		h.persistFailed(w, r, err)
		return
	}
	h.metrics.imports.WithLabelValues("ok").Inc()
	level.Info(h.logger).Log("msg", "form imported", "fields", len(fields))
	h.redirect(w, r, successAlert(MsgImported))
}

func (h *Handler) importFailed(w http.ResponseWriter, r *http.Request, err error) {
	h.metrics.imports.WithLabelValues("rejected").Inc()
	level.Warn(h.logger).Log("msg", "import failed", "err", err)
	h.redirect(w, r, errorAlert(MsgImportFailed))
}

// submitForm applies the posted values. Only non-empty inputs become form
// entries; an unchecked checkbox posts nothing and clears its entry.
func (h *Handler) submitForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.redirect(w, r, errorAlert("Invalid form submission."))
		return
	}
	values, cleared := postedValues(h.builder.Fields(), r.PostForm)
	if err := h.builder.UpdateValues(values, cleared...); err != nil {
		level.Debug(h.logger).Log("msg", "values dropped", "err", err)
		h.redirect(w, r, errorAlert(MsgFieldMissing))
		return
	}

	if r.PostForm.Get("action") != "save" {
		h.redirect(w, r)
		return
	}
	if _, err := h.builder.SaveRecord(); err != nil {
		if errors.Is(err, builder.ErrEmptyForm) {
			h.redirect(w, r, errorAlert(MsgEmptyForm))
			return
		}
		h.internalError(w, "save record", err)
		return
	}
	h.redirect(w, r, successAlert(MsgRecordSaved))
}

// postedValues maps the submitted inputs onto labels. Fields sharing a label
// share one entry: the first non-empty input wins, and the label is cleared
// only when every input carrying it is blank. Values are kept as submitted.
func postedValues(fields []model.Field, form map[string][]string) (model.FormData, []string) {
	var values model.FormData
	blank := map[string]bool{}
	var order []string
	for _, field := range fields {
		value := first(form[FormFieldPrefix+field.ID])
		if _, set := values.Get(field.Label); set {
			continue
		}
		if strings.TrimSpace(value) == "" {
			if _, seen := blank[field.Label]; !seen {
				order = append(order, field.Label)
			}
			blank[field.Label] = true
			continue
		}
		values.Set(field.Label, value)
		delete(blank, field.Label)
	}
	var cleared []string
	for _, label := range order {
		if blank[label] {
			cleared = append(cleared, label)
		}
	}
	return values, cleared
}

func (h *Handler) exportRecords(w http.ResponseWriter, r *http.Request) {
	format, err := exchange.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	file, err := exchange.ExportRecords(r.Context(), h.exporters, format, h.builder.Records())
	if errors.Is(err, exchange.ErrNothingToExport) {
		h.redirect(w, r, errorAlert(MsgNoRecords))
		return
	}
	if err != nil {
		h.internalError(w, "export records", err)
		return
	}
	h.metrics.exports.WithLabelValues("records", string(format)).Inc()
	writeDownload(w, file)
}

// toggleTheme flips the variant, or sets it when the form names one.
func (h *Handler) toggleTheme(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	requested := strings.TrimSpace(r.PostForm.Get("variant"))

	h.mu.Lock()
	if requested != "" {
		h.variant = theme.NormalizeVariant(requested)
	} else {
		h.variant = theme.Toggle(h.variant)
	}
	variant := h.variant
	h.mu.Unlock()

	level.Debug(h.logger).Log("msg", "theme variant changed", "variant", variant)
	h.redirect(w, r)
}

type fieldsResponse struct {
	Data       []model.Field `json:"data"`
	Duplicates []string      `json:"duplicates,omitempty"`
}

type recordsResponse struct {
	Data []model.Record `json:"data"`
}

func (h *Handler) apiFields(w http.ResponseWriter, _ *http.Request) {
	fields := h.builder.Fields()
	if fields == nil {
		fields = []model.Field{}
	}
	writeJSON(w, http.StatusOK, fieldsResponse{Data: fields, Duplicates: h.builder.DuplicateLabels()})
}

func (h *Handler) apiAddField(w http.ResponseWriter, r *http.Request) {
	var input model.FieldInput
	if err := decodeJSONBody(w, r, &input); err != nil {
		writeJSONError(w, err)
		return
	}
	field, err := h.builder.AddField(r.Context(), input)
	switch {
	case errors.Is(err, builder.ErrLabelRequired), errors.Is(err, builder.ErrUnknownType):
		writeJSONError(w, StatusError{Code: http.StatusUnprocessableEntity, Err: err})
		return
	case err != nil:
		level.Error(h.logger).Log("msg", "add field", "err", err)
		writeJSONError(w, StatusError{Code: http.StatusInternalServerError, Err: err})
		return
	}
	writeJSON(w, http.StatusCreated, field)
}

func (h *Handler) apiRecords(w http.ResponseWriter, _ *http.Request) {
	records := h.builder.Records()
	if records == nil {
		records = []model.Record{}
	}
	writeJSON(w, http.StatusOK, recordsResponse{Data: records})
}

// apiSaveRecord saves a JSON object keyed by label as a record. The values
// typed into the page form are left alone.
func (h *Handler) apiSaveRecord(w http.ResponseWriter, r *http.Request) {
	var data model.FormData
	if err := decodeJSONBody(w, r, &data); err != nil {
		writeJSONError(w, err)
		return
	}

	record, err := h.builder.SaveValues(data)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, builder.ErrEmptyForm) || errors.Is(err, builder.ErrUnknownField) {
			code = http.StatusUnprocessableEntity
		}
		writeJSONError(w, StatusError{Code: code, Err: err})
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, alerts ...render.Alert) {
	h.flash.set(w, alerts...)
	http.Redirect(w, r, h.opts.BasePath+"/", http.StatusSeeOther)
}

func (h *Handler) persistFailed(w http.ResponseWriter, r *http.Request, err error) {
	level.Error(h.logger).Log("msg", "persist failed", "err", err)
	h.redirect(w, r, errorAlert(MsgPersistFailed))
}

func (h *Handler) internalError(w http.ResponseWriter, action string, err error) {
	level.Error(h.logger).Log("msg", action, "err", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, 1<<20)
	defer body.Close()
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		return StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("invalid JSON body: %w", err)}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return StatusError{Code: http.StatusBadRequest, Err: errors.New("invalid JSON body: trailing data")}
	}
	return nil
}

func writeDownload(w http.ResponseWriter, file exchange.File) {
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}

func errorAlert(message string) render.Alert {
	return render.Alert{Kind: render.AlertError, Message: message}
}

func successAlert(message string) render.Alert {
	return render.Alert{Kind: render.AlertSuccess, Message: message}
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func isTruthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
