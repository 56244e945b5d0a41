package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// Version is stamped at build time with -ldflags "-X main.Version=...".
var Version = "dev"

type cli struct {
	globalOptions

	Serve      serveCmd      `cmd:"" help:"Serve the form builder over HTTP."`
	Fields     fieldsCmd     `cmd:"" help:"List and edit the persisted field list."`
	Import     importCmd     `cmd:"" help:"Replace the field list with an exported form.json."`
	ExportForm exportFormCmd `cmd:"" name:"export-form" help:"Export the field list as JSON or OpenAPI."`
	Preview    previewCmd    `cmd:"" help:"Show the fields the form would render."`
	Fill       fillCmd       `cmd:"" help:"Fill the form interactively and export the saved records."`
	Version    versionCmd    `cmd:"" help:"Print the version."`
}

func newParser(c *cli) (*kong.Kong, error) {
	return kong.New(c,
		kong.Name("formbuilder"),
		kong.Description("Build forms, fill them and export the records."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)
}

func main() {
	var c cli
	parser, err := newParser(&c)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	c.globalOptions.out = os.Stdout
	c.globalOptions.errOut = os.Stderr
	ctx.FatalIfErrorf(ctx.Run(&c.globalOptions))
}

type versionCmd struct{}

func (v *versionCmd) Run(g *globalOptions) error {
	_, err := fmt.Fprintf(g.stdout(), "formbuilder %s\n", Version)
	return err
}
