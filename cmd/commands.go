package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"partnerpay/config"
	"partnerpay/service"

	"github.com/google/subcommands"
)

// Register adds every partnerpay subcommand to the commander.
func Register(c *subcommands.Commander) {
	c.Register(&migrateCmd{}, "database")

	c.Register(&projectAddCmd{}, "projects")
	c.Register(&projectEditCmd{}, "projects")
	c.Register(&projectRmCmd{}, "projects")
	c.Register(&projectsCmd{}, "projects")
	c.Register(&summaryCmd{}, "projects")

	c.Register(&partnerAddCmd{}, "partners")
	c.Register(&partnerEditCmd{}, "partners")
	c.Register(&partnerRmCmd{}, "partners")
	c.Register(&partnersCmd{}, "partners")

	c.Register(&scenarioAddCmd{}, "scenarios")
	c.Register(&scenarioEditCmd{}, "scenarios")
	c.Register(&scenarioRmCmd{}, "scenarios")
	c.Register(&scenarioSharesCmd{}, "scenarios")
	c.Register(&scenariosCmd{}, "scenarios")
	c.Register(&scenarioExportCmd{}, "scenarios")
	c.Register(&scenarioImportCmd{}, "scenarios")

	c.Register(&attendCmd{}, "attendance")
	c.Register(&worklogCmd{}, "attendance")

	c.Register(&payoutCmd{}, "reports")
	c.Register(&auditCmd{}, "reports")
	c.Register(&exportCmd{}, "reports")
}

// withApp opens the application, runs fn and maps its error to an exit status
func withApp(ctx context.Context, fn func(app *App) error) subcommands.ExitStatus {
	cfg := config.Get()
	config.ConfigureLogging(cfg)

	app, err := NewApp(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer app.Close()

	if err := fn(app); err != nil {
		return reportError(err)
	}
	return subcommands.ExitSuccess
}

// reportError prints err and picks the exit status for it
func reportError(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if errors.Is(err, service.ErrValidation) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}

// usageError prints a usage problem the way flag parsing errors are printed
func usageError(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitUsageError
}
