package cmd

import (
	"context"
	"flag"
	"fmt"

	"partnerpay/config"
	"partnerpay/database"

	"github.com/google/subcommands"
	log "github.com/sirupsen/logrus"
)

// migrateCmd is a container for the schema migration subcommands
type migrateCmd struct{}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "manage the database schema" }
func (*migrateCmd) Usage() string {
	return `migrate <subcommand> [args]

Commands:
  up     - Apply all pending migrations.
  down   - Roll back migrations (default 1 step).
  status - Print the current schema version.
`
}

func (c *migrateCmd) SetFlags(f *flag.FlagSet) {}
func (c *migrateCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	commander := subcommands.NewCommander(f, "migrate")
	commander.Register(&migrateUpCmd{}, "")
	commander.Register(&migrateDownCmd{}, "")
	commander.Register(&migrateStatusCmd{}, "")
	return commander.Execute(ctx, args...)
}

func migrationURL() string {
	cfg := config.Get()
	config.ConfigureLogging(cfg)
	return databaseURL(cfg)
}

type migrateUpCmd struct{}

func (*migrateUpCmd) Name() string             { return "up" }
func (*migrateUpCmd) Synopsis() string         { return "apply all pending migrations" }
func (*migrateUpCmd) Usage() string            { return "up\n" }
func (*migrateUpCmd) SetFlags(f *flag.FlagSet) {}

func (*migrateUpCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := database.MigrateUp(migrationURL()); err != nil {
		return reportError(err)
	}
	return subcommands.ExitSuccess
}

type migrateDownCmd struct {
	steps string
}

func (*migrateDownCmd) Name() string     { return "down" }
func (*migrateDownCmd) Synopsis() string { return "roll back migrations" }
func (*migrateDownCmd) Usage() string    { return "down [-steps N]\n" }
func (c *migrateDownCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.steps, "steps", "1", "Number of migrations to roll back")
}

func (c *migrateDownCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	log.WithField("steps", c.steps).Warn("Rolling back migrations")
	if err := database.MigrateDown(migrationURL(), c.steps); err != nil {
		return reportError(err)
	}
	return subcommands.ExitSuccess
}

type migrateStatusCmd struct{}

func (*migrateStatusCmd) Name() string             { return "status" }
func (*migrateStatusCmd) Synopsis() string         { return "print the current schema version" }
func (*migrateStatusCmd) Usage() string            { return "status\n" }
func (*migrateStatusCmd) SetFlags(f *flag.FlagSet) {}

func (*migrateStatusCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	status, err := database.MigrateStatus(migrationURL())
	if err != nil {
		return reportError(err)
	}
	switch {
	case !status.Applied:
		fmt.Println("No migrations applied")
	case status.Dirty:
		fmt.Printf("Version %d (dirty, fix manually before migrating again)\n", status.Version)
	default:
		fmt.Printf("Version %d\n", status.Version)
	}
	return subcommands.ExitSuccess
}
