package cmd

import (
	"context"
	"flag"
	"os"

	"partnerpay/models"

	"github.com/google/subcommands"
)

type payoutCmd struct {
	project  int64
	partners string
	xlsx     string
}

func (*payoutCmd) Name() string     { return "payout" }
func (*payoutCmd) Synopsis() string { return "compute what each partner earns on a project" }
func (*payoutCmd) Usage() string {
	return `payout -project <id> [-partners W1,W2,W3] [-xlsx payout.xlsx]

  Splits the project value after the firm cut by scenario share and worked
  days. Partners default to every known partner.
`
}

func (c *payoutCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.project, "project", 0, "Project ID (required)")
	f.StringVar(&c.partners, "partners", "", "Comma separated partners to include")
	f.StringVar(&c.xlsx, "xlsx", "", "Also write the report to this spreadsheet")
}

func (c *payoutCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.project == 0 {
		return usageError("-project is required")
	}
	return withApp(ctx, func(app *App) error {
		report, err := app.Payouts.CalculatePayouts(ctx, c.project, parseNames(c.partners))
		if err != nil {
			return err
		}
		printMarkdown(payoutMarkdown(report, app.Config.Currency))

		if c.xlsx == "" {
			return nil
		}
		return writeOutput(c.xlsx, func(w *os.File) error {
			return app.Export.ExportPayoutXLSX(report, w)
		})
	})
}

type auditCmd struct {
	entity string
	id     int64
	limit  int
}

func (*auditCmd) Name() string     { return "audit" }
func (*auditCmd) Synopsis() string { return "show the scenario change history" }
func (*auditCmd) Usage() string {
	return `audit [-entity scenario|scenario_shares] [-id <entity id>] [-limit N]

  Lists audit entries newest first.
`
}

func (c *auditCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.entity, "entity", "", "Entity type filter")
	f.Int64Var(&c.id, "id", 0, "Entity ID filter")
	f.IntVar(&c.limit, "limit", 0, "Maximum number of entries, configured default when 0")
}

func (c *auditCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	filter := models.AuditFilter{Limit: c.limit}
	switch models.AuditEntityType(c.entity) {
	case "":
	case models.AuditEntityScenario, models.AuditEntityScenarioShares:
		filter.EntityType = models.AuditEntityType(c.entity)
	default:
		return usageError("unknown entity %q", c.entity)
	}
	if c.id != 0 {
		filter.EntityID = &c.id
	}

	return withApp(ctx, func(app *App) error {
		entries, err := app.Audit.Query(ctx, filter)
		if err != nil {
			return err
		}
		printMarkdown(auditMarkdown(entries))
		return nil
	})
}

type exportCmd struct {
	what string
	out  string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export projects or the worklog as CSV" }
func (*exportCmd) Usage() string    { return "export -what projects|worklog [-out file.csv]\n" }
func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.what, "what", "projects", "What to export: projects or worklog")
	f.StringVar(&c.out, "out", "", "Output file, standard output when empty")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.what != "projects" && c.what != "worklog" {
		return usageError("unknown export %q", c.what)
	}
	return withApp(ctx, func(app *App) error {
		return writeOutput(c.out, func(w *os.File) error {
			if c.what == "worklog" {
				return app.Export.ExportWorklogCSV(ctx, w)
			}
			return app.Export.ExportProjectsCSV(ctx, w)
		})
	})
}

