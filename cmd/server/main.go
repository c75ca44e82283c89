package main

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/chroniclehq/chronicle/cmd/server/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Debug     bool `help:"Enable debug mode."`
		Version   kong.VersionFlag
		API       commands.APICmd       `cmd:"" help:"Start the REST API server"`
		Scheduler commands.SchedulerCmd `cmd:"" help:"Start the reminder scheduler"`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
