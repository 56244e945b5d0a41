package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

type fieldsCmd struct {
	List   fieldsListCmd   `cmd:"" default:"1" help:"List the fields."`
	Add    fieldsAddCmd    `cmd:"" help:"Add a field. Prompts when --label is omitted."`
	Remove fieldsRemoveCmd `cmd:"" help:"Remove a field by id."`
	Move   fieldsMoveCmd   `cmd:"" help:"Move a field onto another field or to an index."`
	Clear  fieldsClearCmd  `cmd:"" help:"Remove every field."`
}

type fieldsListCmd struct{}

func (l *fieldsListCmd) Run(g *globalOptions) error {
	rt, err := g.open(context.Background())
	if err != nil {
		return err
	}
	defer rt.Close()

	renderFieldsTable(g.stdout(), rt.builder.Fields())
	if dups := rt.builder.DuplicateLabels(); len(dups) > 0 {
		fmt.Fprintf(g.stdout(), "Fields sharing a label also share their value: %s\n", strings.Join(dups, ", "))
	}
	return nil
}

type fieldsAddCmd struct {
	Label   string `short:"l" help:"Field label."`
	Type    string `short:"t" default:"text" help:"Field type: text, number, date, textarea, checkbox or select."`
	Options string `help:"Comma separated options for select fields."`
}

func (a *fieldsAddCmd) Run(g *globalOptions) error {
	ctx := context.Background()
	rt, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	input := model.FieldInput{Label: a.Label, Type: a.Type, Options: a.Options}
	if strings.TrimSpace(a.Label) == "" {
		prompter, err := g.prompter()
		if err != nil {
			return err
		}
		if input, err = prompter.PromptField(ctx); err != nil {
			return err
		}
	}

	field, err := rt.builder.AddField(ctx, input)
	if errors.Is(err, builder.ErrLabelRequired) {
		return errors.New("Label is required!")
	}
	if err != nil && field.ID == "" {
		return err
	}
	fmt.Fprintf(g.stdout(), "Added %s field %q (%s)\n", field.Type, field.Label, field.ID)
	return err
}

type fieldsRemoveCmd struct {
	ID string `arg:"" help:"Id of the field to remove."`
}

func (r *fieldsRemoveCmd) Run(g *globalOptions) error {
	ctx := context.Background()
	rt, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.builder.RemoveField(ctx, r.ID); err != nil {
		return err
	}
	fmt.Fprintf(g.stdout(), "Removed field %s\n", r.ID)
	return nil
}

type fieldsMoveCmd struct {
	ID    string `arg:"" help:"Id of the field to move."`
	Over  string `help:"Id of the field whose position it takes."`
	Index int    `default:"-1" help:"Zero based target position."`
}

func (m *fieldsMoveCmd) Run(g *globalOptions) error {
	if m.Over == "" && m.Index < 0 {
		return errors.New("either --over or --index is required")
	}
	ctx := context.Background()
	rt, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	var moved bool
	if m.Over != "" {
		if _, ok := rt.builder.Field(m.ID); !ok {
			return fmt.Errorf("%w: %q", builder.ErrFieldNotFound, m.ID)
		}
		moved, err = rt.builder.MoveField(ctx, m.ID, m.Over)
	} else {
		moved, err = rt.builder.MoveFieldTo(ctx, m.ID, m.Index)
	}
	if err != nil {
		return err
	}
	if !moved {
		fmt.Fprintln(g.stdout(), "Order unchanged.")
	}
	renderFieldsTable(g.stdout(), rt.builder.Fields())
	return nil
}

type fieldsClearCmd struct {
	Yes bool `short:"y" help:"Do not ask for confirmation."`
}

func (c *fieldsClearCmd) Run(g *globalOptions) error {
	ctx := context.Background()
	rt, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	if !c.Yes {
		prompter, err := g.prompter()
		if err != nil {
			return err
		}
		ok, err := prompter.Confirm(ctx, "Are you sure you want to clear the form?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(g.stdout(), "Nothing cleared.")
			return nil
		}
	}
	if err := rt.builder.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(g.stdout(), "All fields cleared.")
	return nil
}
