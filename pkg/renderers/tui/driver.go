package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// InputConfig configures a single line input prompt.
type InputConfig struct {
	Message   string
	Default   string
	Help      string
	Validator func(string) error
}

// ConfirmConfig configures a yes/no style prompt.
type ConfirmConfig struct {
	Message string
	Default bool
	Help    string
}

// SelectConfig configures a single choice prompt.
type SelectConfig struct {
	Message      string
	Options      []string
	DefaultIndex int
	Help         string
	PageSize     int
}

// TextAreaConfig configures a multi-line text prompt.
type TextAreaConfig struct {
	Message string
	Default string
	Help    string
}

// PromptDriver abstracts the terminal so fill logic can be tested without a
// real TTY.
type PromptDriver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error)
	Select(ctx context.Context, cfg SelectConfig) (int, error)
	TextArea(ctx context.Context, cfg TextAreaConfig) (string, error)
	Info(ctx context.Context, msg string) error
}

type surveyDriver struct {
	out io.Writer
}

func newSurveyDriver(out io.Writer) PromptDriver {
	if out == nil {
		out = os.Stdout
	}
	return &surveyDriver{out: out}
}

// ask runs one survey prompt. Ctrl-C surfaces as ErrAborted.
func (d *surveyDriver) ask(ctx context.Context, prompt survey.Prompt, answer any, opts ...survey.AskOpt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := survey.AskOne(prompt, answer, opts...)
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

func (d *surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	var opts []survey.AskOpt
	if validate := cfg.Validator; validate != nil {
		opts = append(opts, survey.WithValidator(func(ans interface{}) error {
			text, _ := ans.(string)
			return validate(text)
		}))
	}
	var answer string
	err := d.ask(ctx, &survey.Input{Message: cfg.Message, Help: cfg.Help, Default: cfg.Default}, &answer, opts...)
	return answer, err
}

func (d *surveyDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	var answer bool
	err := d.ask(ctx, &survey.Confirm{Message: cfg.Message, Help: cfg.Help, Default: cfg.Default}, &answer)
	return answer, err
}

// Select returns the index of the chosen option.
func (d *surveyDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	prompt := &survey.Select{Message: cfg.Message, Options: cfg.Options, Help: cfg.Help, PageSize: cfg.PageSize}
	if cfg.DefaultIndex >= 0 && cfg.DefaultIndex < len(cfg.Options) {
		prompt.Default = cfg.Options[cfg.DefaultIndex]
	}
	var answer int
	if err := d.ask(ctx, prompt, &answer); err != nil {
		return 0, err
	}
	return answer, nil
}

func (d *surveyDriver) TextArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	var answer string
	err := d.ask(ctx, &survey.Multiline{Message: cfg.Message, Help: cfg.Help, Default: cfg.Default}, &answer)
	return answer, err
}

func (d *surveyDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}
