package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type partnerAddCmd struct {
	name  string
	share float64
}

func (*partnerAddCmd) Name() string     { return "partner-add" }
func (*partnerAddCmd) Synopsis() string { return "add a partner" }
func (*partnerAddCmd) Usage() string {
	return `partner-add -name <name> [-share <percent>]

  The share is informational; payouts use scenario shares.
`
}

func (c *partnerAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Partner name (required)")
	f.Float64Var(&c.share, "share", 0, "Share percentage")
}

func (c *partnerAddCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" {
		return usageError("-name is required")
	}
	return withApp(ctx, func(app *App) error {
		partner, err := app.Partners.AddPartner(ctx, c.name, c.share)
		if err != nil {
			return err
		}
		fmt.Printf("Added partner %s\n", partner.Name)
		return nil
	})
}

type partnerEditCmd struct {
	name    string
	newName string
	share   float64
}

func (*partnerEditCmd) Name() string     { return "partner-edit" }
func (*partnerEditCmd) Synopsis() string { return "rename a partner or change its share" }
func (*partnerEditCmd) Usage() string {
	return "partner-edit -name <name> [-new-name <name>] -share <percent>\n"
}

func (c *partnerEditCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Current partner name (required)")
	f.StringVar(&c.newName, "new-name", "", "New partner name")
	f.Float64Var(&c.share, "share", 0, "Share percentage")
}

func (c *partnerEditCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" {
		return usageError("-name is required")
	}
	newName := c.newName
	if newName == "" {
		newName = c.name
	}
	return withApp(ctx, func(app *App) error {
		if err := app.Partners.UpdatePartner(ctx, c.name, newName, c.share); err != nil {
			return err
		}
		fmt.Printf("Updated partner %s\n", newName)
		return nil
	})
}

type partnerRmCmd struct {
	name string
}

func (*partnerRmCmd) Name() string     { return "partner-rm" }
func (*partnerRmCmd) Synopsis() string { return "delete a partner" }
func (*partnerRmCmd) Usage() string    { return "partner-rm -name <name>\n" }
func (c *partnerRmCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Partner name (required)")
}

func (c *partnerRmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" {
		return usageError("-name is required")
	}
	return withApp(ctx, func(app *App) error {
		if err := app.Partners.DeletePartner(ctx, c.name); err != nil {
			return err
		}
		fmt.Printf("Deleted partner %s\n", c.name)
		return nil
	})
}

type partnersCmd struct{}

func (*partnersCmd) Name() string             { return "partners" }
func (*partnersCmd) Synopsis() string         { return "list partners" }
func (*partnersCmd) Usage() string            { return "partners\n" }
func (*partnersCmd) SetFlags(f *flag.FlagSet) {}

func (*partnersCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(app *App) error {
		partners, err := app.Partners.ListPartners(ctx)
		if err != nil {
			return err
		}
		printMarkdown(partnersMarkdown(partners, app.Config.DefaultPartners))
		return nil
	})
}
