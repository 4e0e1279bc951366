package cmd

import (
	"context"
	"flag"
	"fmt"

	"partnerpay/models"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type projectAddCmd struct {
	name        string
	date        string
	scenario    string
	value       string
	plannedDays int
}

func (*projectAddCmd) Name() string     { return "project-add" }
func (*projectAddCmd) Synopsis() string { return "add a project" }
func (*projectAddCmd) Usage() string {
	return `project-add -name <name> -value <amount> [-date YYYY-MM-DD] [-scenario <name>] [-planned-days N]

  Adds a project. The scenario defaults to the default scenario and the date to today.
`
}

func (c *projectAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Project name (required)")
	f.StringVar(&c.date, "date", "", "Project date, YYYY-MM-DD")
	f.StringVar(&c.scenario, "scenario", "", "Scenario name")
	f.StringVar(&c.value, "value", "", "Total project value (required)")
	f.IntVar(&c.plannedDays, "planned-days", 1, "Planned number of working days")
}

func (c *projectAddCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" || c.value == "" {
		return usageError("-name and -value are required")
	}
	value, err := decimal.NewFromString(c.value)
	if err != nil {
		return usageError("invalid value %q", c.value)
	}
	date, err := parseDate(c.date)
	if err != nil {
		return usageError("%v", err)
	}

	return withApp(ctx, func(app *App) error {
		scenario := c.scenario
		if scenario == "" {
			def, err := app.Scenarios.GetDefaultScenario(ctx)
			if err != nil {
				return err
			}
			if def == nil {
				return fmt.Errorf("no default scenario, pass -scenario")
			}
			scenario = def.Name
		}

		project := &models.Project{
			Name:        c.name,
			Date:        date,
			Scenario:    scenario,
			Value:       value,
			PlannedDays: c.plannedDays,
		}
		if err := app.Projects.CreateProject(ctx, project); err != nil {
			return err
		}
		fmt.Printf("Created project %d: %s (%s)\n", project.ID, project.Name, project.Scenario)
		return nil
	})
}

type projectEditCmd struct {
	id          int64
	name        string
	date        string
	scenario    string
	value       string
	plannedDays int
}

func (*projectEditCmd) Name() string     { return "project-edit" }
func (*projectEditCmd) Synopsis() string { return "change a project" }
func (*projectEditCmd) Usage() string {
	return `project-edit -project <id> [-name <name>] [-date YYYY-MM-DD] [-scenario <name>] [-value <amount>] [-planned-days N]

  Changes only the fields that are given.
`
}

func (c *projectEditCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.id, "project", 0, "Project ID (required)")
	f.StringVar(&c.name, "name", "", "New name")
	f.StringVar(&c.date, "date", "", "New date, YYYY-MM-DD")
	f.StringVar(&c.scenario, "scenario", "", "New scenario name")
	f.StringVar(&c.value, "value", "", "New total value")
	f.IntVar(&c.plannedDays, "planned-days", 0, "New planned number of working days")
}

func (c *projectEditCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == 0 {
		return usageError("-project is required")
	}
	set := make(map[string]bool)
	f.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	delete(set, "project")
	if len(set) == 0 {
		return usageError("nothing to change")
	}

	var value decimal.Decimal
	if set["value"] {
		v, err := decimal.NewFromString(c.value)
		if err != nil {
			return usageError("invalid value %q", c.value)
		}
		value = v
	}
	date, err := parseDate(c.date)
	if set["date"] && err != nil {
		return usageError("%v", err)
	}

	return withApp(ctx, func(app *App) error {
		if len(set) == 1 && set["planned-days"] {
			if err := app.Projects.UpdatePlannedDays(ctx, c.id, c.plannedDays); err != nil {
				return err
			}
			fmt.Printf("Project %d planned days set to %d\n", c.id, c.plannedDays)
			return nil
		}

		project, err := app.Projects.GetProject(ctx, c.id)
		if err != nil {
			return err
		}
		if set["name"] {
			project.Name = c.name
		}
		if set["date"] {
			project.Date = date
		}
		if set["scenario"] {
			project.Scenario = c.scenario
		}
		if set["value"] {
			project.Value = value
		}
		if set["planned-days"] {
			project.PlannedDays = c.plannedDays
		}
		if err := app.Projects.UpdateProject(ctx, project); err != nil {
			return err
		}
		fmt.Printf("Updated project %d\n", project.ID)
		return nil
	})
}

type projectRmCmd struct {
	id int64
}

func (*projectRmCmd) Name() string     { return "project-rm" }
func (*projectRmCmd) Synopsis() string { return "delete a project and its worklog" }
func (*projectRmCmd) Usage() string    { return "project-rm -project <id>\n" }
func (c *projectRmCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.id, "project", 0, "Project ID (required)")
}

func (c *projectRmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == 0 {
		return usageError("-project is required")
	}
	return withApp(ctx, func(app *App) error {
		if err := app.Projects.DeleteProject(ctx, c.id); err != nil {
			return err
		}
		fmt.Printf("Deleted project %d\n", c.id)
		return nil
	})
}

type projectsCmd struct{}

func (*projectsCmd) Name() string             { return "projects" }
func (*projectsCmd) Synopsis() string         { return "list projects" }
func (*projectsCmd) Usage() string            { return "projects\n" }
func (*projectsCmd) SetFlags(f *flag.FlagSet) {}

func (*projectsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(app *App) error {
		projects, err := app.Projects.ListProjects(ctx)
		if err != nil {
			return err
		}
		printMarkdown(projectsMarkdown(projects, app.Config.Currency))
		return nil
	})
}

type summaryCmd struct {
	yearly bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "summarize project value per month or year" }
func (*summaryCmd) Usage() string    { return "summary [-yearly]\n" }
func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yearly, "yearly", false, "Group by year instead of month")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(app *App) error {
		var (
			summaries []*models.PeriodSummary
			err       error
			title     = "Monthly summary"
		)
		if c.yearly {
			summaries, err = app.Projects.YearlySummary(ctx)
			title = "Yearly summary"
		} else {
			summaries, err = app.Projects.MonthlySummary(ctx)
		}
		if err != nil {
			return err
		}
		printMarkdown(summaryMarkdown(title, summaries, app.Config.Currency))
		return nil
	})
}
