// Package tui fills a form interactively in the terminal. Each field type maps
// onto a survey prompt: text inputs, validated number and date inputs, a
// multi-line editor, a yes/no confirm for checkboxes and a picker for
// dropdowns.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
)

// DateLayout is the accepted date input format.
const DateLayout = "2006-01-02"

const noSelection = "(none)"

// Renderer implements render.Renderer for terminal sessions: rendering a page
// means prompting for every field and serializing the answers.
type Renderer struct {
	driver       PromptDriver
	out          io.Writer
	outputFormat OutputFormat
	theme        Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{outputFormat: OutputFormatJSON}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = newSurveyDriver(r.out)
	}
	switch r.outputFormat {
	case OutputFormatJSON, OutputFormatFormURLEncoded, OutputFormatPrettyText:
	default:
		return nil, fmt.Errorf("tui: unknown output format %q", r.outputFormat)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render prompts for every field of page, prefilled with its current value,
// and serializes the answers.
func (r *Renderer) Render(ctx context.Context, page render.Page, _ render.RenderOptions) ([]byte, error) {
	fields := make([]model.Field, 0, len(page.Fields))
	values := model.FormData{}
	for _, view := range page.Fields {
		field := model.Field{ID: view.ID, Label: view.Label, Type: model.FieldType(view.Type)}
		for _, option := range view.Options {
			field.Options = append(field.Options, option.Value)
		}
		fields = append(fields, field)
		if view.Value != "" {
			values.Set(view.Label, view.Value)
		}
	}

	answers, err := r.Fill(ctx, fields, values)
	if err != nil {
		return nil, err
	}
	return r.serialize(answers)
}

// Fill prompts for each field in order and returns the entered values keyed
// by label. Blank answers, unchecked checkboxes and skipped dropdowns leave no
// key, matching what a browser submits for an untouched form.
func (r *Renderer) Fill(ctx context.Context, fields []model.Field, prefill model.FormData) (model.FormData, error) {
	if ctx == nil {
		return model.FormData{}, errors.New("tui: context is required")
	}
	if len(fields) == 0 {
		return model.FormData{}, ErrNoFields
	}

	var answers model.FormData
	for _, field := range fields {
		if err := ctx.Err(); err != nil {
			return model.FormData{}, err
		}
		current, _ := prefill.Get(field.Label)
		value, ok, err := r.prompt(ctx, field, current)
		if err != nil {
			return model.FormData{}, fmt.Errorf("tui: field %q: %w", field.Label, err)
		}
		if ok {
			answers.Set(field.Label, value)
		}
	}
	return answers, nil
}

// Info prints a message through the driver.
func (r *Renderer) Info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

// Confirm asks a yes/no question.
func (r *Renderer) Confirm(ctx context.Context, message string) (bool, error) {
	return r.driver.Confirm(ctx, ConfirmConfig{Message: message})
}

// PromptField collects the editor input for a new field.
func (r *Renderer) PromptField(ctx context.Context) (model.FieldInput, error) {
	label, err := r.driver.Input(ctx, InputConfig{
		Message: "Label",
		Validator: func(value string) error {
			if strings.TrimSpace(value) == "" {
				return errors.New("Label is required!")
			}
			return nil
		},
	})
	if err != nil {
		return model.FieldInput{}, err
	}

	titles := make([]string, len(model.FieldTypes))
	for i, t := range model.FieldTypes {
		titles[i] = t.Title()
	}
	index, err := r.driver.Select(ctx, SelectConfig{Message: "Type", Options: titles})
	if err != nil {
		return model.FieldInput{}, err
	}
	if index < 0 || index >= len(model.FieldTypes) {
		index = 0
	}
	input := model.FieldInput{Label: label, Type: string(model.FieldTypes[index])}

	if model.FieldTypes[index] == model.FieldTypeSelect {
		input.Options, err = r.driver.Input(ctx, InputConfig{
			Message: "Options",
			Help:    "Comma separated, e.g. Red, Green, Blue",
		})
		if err != nil {
			return model.FieldInput{}, err
		}
	}
	return input, nil
}

func (r *Renderer) prompt(ctx context.Context, field model.Field, current string) (string, bool, error) {
	message := field.Label
	switch field.Type {
	case model.FieldTypeNumber:
		return present(r.driver.Input(ctx, InputConfig{Message: message, Default: current, Validator: validateNumber}))
	case model.FieldTypeDate:
		return present(r.driver.Input(ctx, InputConfig{
			Message:   message,
			Default:   current,
			Help:      "Format YYYY-MM-DD",
			Validator: validateDate,
		}))
	case model.FieldTypeTextarea:
		return present(r.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: current}))
	case model.FieldTypeCheckbox:
		checked, err := r.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: current == "true"})
		if err != nil || !checked {
			return "", false, err
		}
		return "true", true, nil
	case model.FieldTypeSelect:
		if len(field.Options) > 0 {
			return r.promptSelect(ctx, field, current)
		}
	}
	return present(r.driver.Input(ctx, InputConfig{Message: message, Default: current}))
}

func (r *Renderer) promptSelect(ctx context.Context, field model.Field, current string) (string, bool, error) {
	options := append([]string{noSelection}, field.Options...)
	defaultIndex := 0
	for i, option := range field.Options {
		if option == current {
			defaultIndex = i + 1
			break
		}
	}
	index, err := r.driver.Select(ctx, SelectConfig{
		Message:      field.Label,
		Options:      options,
		DefaultIndex: defaultIndex,
	})
	if err != nil {
		return "", false, err
	}
	if index <= 0 || index >= len(options) {
		return "", false, nil
	}
	return options[index], true, nil
}

func present(value string, err error) (string, bool, error) {
	if err != nil {
		return "", false, err
	}
	if strings.TrimSpace(value) == "" {
		return "", false, nil
	}
	return value, true, nil
}

func validateNumber(value string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err != nil {
		return errors.New("enter a number")
	}
	return nil
}

func validateDate(value string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	if _, err := time.Parse(DateLayout, strings.TrimSpace(value)); err != nil {
		return errors.New("enter a date as YYYY-MM-DD")
	}
	return nil
}

func (r *Renderer) serialize(values model.FormData) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		form := url.Values{}
		for _, entry := range values.Entries() {
			form.Set(entry.Key, entry.Value)
		}
		return []byte(form.Encode()), nil
	case OutputFormatPrettyText:
		var b strings.Builder
		for _, entry := range values.Entries() {
			fmt.Fprintf(&b, "%s: %s\n", entry.Key, entry.Value)
		}
		return []byte(b.String()), nil
	default:
		return values.MarshalJSON()
	}
}
