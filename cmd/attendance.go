package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type attendCmd struct {
	project int64
	date    string
	present string
	absent  string
}

func (*attendCmd) Name() string     { return "attend" }
func (*attendCmd) Synopsis() string { return "log who worked on a project on a day" }
func (*attendCmd) Usage() string {
	return `attend -project <id> [-date YYYY-MM-DD] [-present W1,W2] [-absent W3]

  Records presence for one day, defaulting to today. Logging the same partner
  and day again overwrites the earlier entry.
`
}

func (c *attendCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.project, "project", 0, "Project ID (required)")
	f.StringVar(&c.date, "date", "", "Day, YYYY-MM-DD")
	f.StringVar(&c.present, "present", "", "Comma separated partners who worked")
	f.StringVar(&c.absent, "absent", "", "Comma separated partners who did not work")
}

func (c *attendCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.project == 0 {
		return usageError("-project is required")
	}
	date, err := parseDate(c.date)
	if err != nil {
		return usageError("%v", err)
	}
	presence, err := parsePresence(c.present, c.absent)
	if err != nil {
		return usageError("%v", err)
	}
	if len(presence) == 0 {
		return usageError("at least one of -present or -absent is required")
	}

	return withApp(ctx, func(app *App) error {
		if len(presence) == 1 {
			for partner, present := range presence {
				if _, err := app.Attendance.LogAttendance(ctx, c.project, date, partner, present); err != nil {
					return err
				}
			}
		} else if err := app.Attendance.LogDay(ctx, c.project, date, presence); err != nil {
			return err
		}
		fmt.Printf("Logged %d partner(s) on %s\n", len(presence), date.Format(dateLayout))
		return nil
	})
}

type worklogCmd struct {
	project int64
}

func (*worklogCmd) Name() string     { return "worklog" }
func (*worklogCmd) Synopsis() string { return "show the worklog of a project" }
func (*worklogCmd) Usage() string    { return "worklog -project <id>\n" }
func (c *worklogCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.project, "project", 0, "Project ID (required)")
}

func (c *worklogCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.project == 0 {
		return usageError("-project is required")
	}
	return withApp(ctx, func(app *App) error {
		project, err := app.Projects.GetProject(ctx, c.project)
		if err != nil {
			return err
		}
		partners, err := app.Partners.PartnerNames(ctx)
		if err != nil {
			return err
		}
		counts, err := app.Attendance.GetWorkedDaysByPartner(ctx, project.ID, partners)
		if err != nil {
			return err
		}
		entries, err := app.Attendance.ListEntries(ctx, project.ID)
		if err != nil {
			return err
		}
		printMarkdown(worklogMarkdown(project, entries, counts, partners))
		return nil
	})
}
