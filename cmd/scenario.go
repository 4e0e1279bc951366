package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type scenarioAddCmd struct {
	name        string
	description string
	isDefault   bool
	shares      string
}

func (*scenarioAddCmd) Name() string     { return "scenario-add" }
func (*scenarioAddCmd) Synopsis() string { return "add a scenario" }
func (*scenarioAddCmd) Usage() string {
	return `scenario-add -name <name> [-description <text>] [-default] [-shares W1=40,W2=30,W3=30]

  Adds a scenario. Making it the default clears the previous default.
  Shares that do not sum to 100% are saved with a warning.
`
}

func (c *scenarioAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Scenario name (required)")
	f.StringVar(&c.description, "description", "", "Description")
	f.BoolVar(&c.isDefault, "default", false, "Make this the default scenario")
	f.StringVar(&c.shares, "shares", "", "Partner shares as partner=percent pairs")
}

func (c *scenarioAddCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" {
		return usageError("-name is required")
	}
	shares, err := parseShares(c.shares)
	if err != nil {
		return usageError("%v", err)
	}

	return withApp(ctx, func(app *App) error {
		scenario, err := app.Scenarios.CreateScenario(ctx, c.name, c.description, c.isDefault)
		if err != nil {
			return err
		}
		fmt.Printf("Created scenario %s\n", scenario.Name)
		if len(shares) == 0 {
			return nil
		}
		validation, err := app.Scenarios.SetScenarioShares(ctx, scenario.ID, shares)
		if err != nil {
			return err
		}
		printMarkdown(sharesValidationMarkdown(scenario.Name, validation))
		return nil
	})
}

type scenarioEditCmd struct {
	scenario    string
	name        string
	description string
	isDefault   bool
}

func (*scenarioEditCmd) Name() string     { return "scenario-edit" }
func (*scenarioEditCmd) Synopsis() string { return "rename a scenario or change its description or default flag" }
func (*scenarioEditCmd) Usage() string {
	return `scenario-edit -scenario <name> [-name <new name>] [-description <text>] [-default=true|false]

  Renaming a scenario also renames it on every project that uses it.
`
}

func (c *scenarioEditCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.scenario, "scenario", "", "Scenario to change (required)")
	f.StringVar(&c.name, "name", "", "New name")
	f.StringVar(&c.description, "description", "", "New description")
	f.BoolVar(&c.isDefault, "default", false, "Default flag")
}

func (c *scenarioEditCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.scenario == "" {
		return usageError("-scenario is required")
	}
	set := make(map[string]bool)
	f.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	return withApp(ctx, func(app *App) error {
		existing, err := app.Scenarios.GetScenarioByName(ctx, c.scenario)
		if err != nil {
			return err
		}
		name, description, isDefault := existing.Name, existing.Description, existing.IsDefault
		if set["name"] {
			name = c.name
		}
		if set["description"] {
			description = c.description
		}
		if set["default"] {
			isDefault = c.isDefault
		}
		updated, err := app.Scenarios.UpdateScenario(ctx, existing.ID, name, description, isDefault)
		if err != nil {
			return err
		}
		fmt.Printf("Updated scenario %s\n", updated.Name)
		return nil
	})
}

type scenarioRmCmd struct {
	scenario string
}

func (*scenarioRmCmd) Name() string     { return "scenario-rm" }
func (*scenarioRmCmd) Synopsis() string { return "delete a scenario that no project uses" }
func (*scenarioRmCmd) Usage() string    { return "scenario-rm -scenario <name>\n" }
func (c *scenarioRmCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.scenario, "scenario", "", "Scenario name (required)")
}

func (c *scenarioRmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.scenario == "" {
		return usageError("-scenario is required")
	}
	return withApp(ctx, func(app *App) error {
		scenario, err := app.Scenarios.GetScenarioByName(ctx, c.scenario)
		if err != nil {
			return err
		}
		if err := app.Scenarios.DeleteScenario(ctx, scenario.ID); err != nil {
			return err
		}
		fmt.Printf("Deleted scenario %s\n", scenario.Name)
		return nil
	})
}

type scenarioSharesCmd struct {
	scenario string
	shares   string
}

func (*scenarioSharesCmd) Name() string     { return "scenario-shares" }
func (*scenarioSharesCmd) Synopsis() string { return "replace the shares of a scenario" }
func (*scenarioSharesCmd) Usage() string {
	return `scenario-shares -scenario <name> -shares W1=40,W2=30,W3=30

  Replaces every share of the scenario. Shares that do not sum to 100% are
  saved with a warning.
`
}

func (c *scenarioSharesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.scenario, "scenario", "", "Scenario name (required)")
	f.StringVar(&c.shares, "shares", "", "Partner shares as partner=percent pairs")
}

func (c *scenarioSharesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.scenario == "" {
		return usageError("-scenario is required")
	}
	shares, err := parseShares(c.shares)
	if err != nil {
		return usageError("%v", err)
	}
	return withApp(ctx, func(app *App) error {
		scenario, err := app.Scenarios.GetScenarioByName(ctx, c.scenario)
		if err != nil {
			return err
		}
		validation, err := app.Scenarios.SetScenarioShares(ctx, scenario.ID, shares)
		if err != nil {
			return err
		}
		printMarkdown(sharesValidationMarkdown(scenario.Name, validation))
		return nil
	})
}

type scenariosCmd struct{}

func (*scenariosCmd) Name() string             { return "scenarios" }
func (*scenariosCmd) Synopsis() string         { return "list scenarios with their shares" }
func (*scenariosCmd) Usage() string            { return "scenarios\n" }
func (*scenariosCmd) SetFlags(f *flag.FlagSet) {}

func (*scenariosCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(app *App) error {
		scenarios, err := app.Scenarios.ListScenarios(ctx)
		if err != nil {
			return err
		}
		printMarkdown(scenariosMarkdown(scenarios))
		return nil
	})
}

type scenarioExportCmd struct {
	out string
}

func (*scenarioExportCmd) Name() string     { return "scenario-export" }
func (*scenarioExportCmd) Synopsis() string { return "write every scenario as a JSON document" }
func (*scenarioExportCmd) Usage() string    { return "scenario-export [-out scenarios.json]\n" }
func (c *scenarioExportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.out, "out", "", "Output file, standard output when empty")
}

func (c *scenarioExportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(app *App) error {
		return writeOutput(c.out, func(w *os.File) error {
			return app.Scenarios.ExportScenarios(ctx, w)
		})
	})
}

type scenarioImportCmd struct {
	in string
}

func (*scenarioImportCmd) Name() string     { return "scenario-import" }
func (*scenarioImportCmd) Synopsis() string { return "create or update scenarios from a JSON document" }
func (*scenarioImportCmd) Usage() string {
	return `scenario-import -in scenarios.json

  Scenarios are matched by name. A malformed record is reported and skipped.
`
}

func (c *scenarioImportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.in, "in", "", "Input file (required)")
}

func (c *scenarioImportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.in == "" {
		return usageError("-in is required")
	}
	file, err := os.Open(c.in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %q: %v\n", c.in, err)
		return subcommands.ExitFailure
	}
	defer file.Close()

	return withApp(ctx, func(app *App) error {
		result, err := app.Scenarios.ImportScenarios(ctx, file)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d scenario(s)\n", result.Imported)
		for _, entryErr := range result.Errors {
			fmt.Fprintf(os.Stderr, "Skipped %v\n", entryErr)
		}
		if len(result.Errors) > 0 {
			return fmt.Errorf("%d record(s) could not be imported", len(result.Errors))
		}
		return nil
	})
}

// writeOutput runs fn against the named file, or standard output when path is empty
func writeOutput(path string, fn func(w *os.File) error) error {
	if path == "" {
		return fn(os.Stdout)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := fn(file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
	return nil
}
