package cmd

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"partnerpay/models"
	"partnerpay/service"

	"github.com/charmbracelet/glamour"
	md "github.com/nao1215/markdown"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var plainOutput = flag.Bool("plain", false, "Print raw markdown instead of rendering it for the terminal")

// printMarkdown renders text for the terminal, or prints it as is with -plain
func printMarkdown(text string) {
	writeMarkdown(os.Stdout, text, *plainOutput)
}

func writeMarkdown(w io.Writer, text string, plain bool) {
	if !plain {
		out, err := glamour.Render(text, "dark")
		if err == nil {
			fmt.Fprint(w, out)
			return
		}
		log.WithError(err).Debug("Markdown rendering failed, printing raw text")
	}
	fmt.Fprint(w, text)
}

// newDoc starts a markdown document with a title
func newDoc(title string) *md.Markdown {
	doc := md.NewMarkdown(&bytes.Buffer{})
	doc.H1(title)
	return doc
}

// cells escapes pipes so values cannot break the table layout
func cells(values ...string) []string {
	for i, v := range values {
		values[i] = strings.ReplaceAll(v, "|", `\|`)
	}
	return values
}

func money(d decimal.Decimal, currency string) string {
	return d.StringFixed(2) + " " + currency
}

func percent(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}

func projectsMarkdown(projects []*models.Project, currency string) string {
	doc := newDoc("Projects")
	if len(projects) == 0 {
		doc.PlainText("No projects yet.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignRight, md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight},
		Header:    []string{"ID", "Name", "Date", "Scenario", "Value", "Planned days"},
	}
	for _, p := range projects {
		table.Rows = append(table.Rows, cells(
			strconv.FormatInt(p.ID, 10),
			p.Name,
			p.Date.Format(dateLayout),
			p.Scenario,
			money(p.Value, currency),
			strconv.Itoa(p.PlannedDays),
		))
	}
	doc.Table(table)
	return doc.String()
}

func summaryMarkdown(title string, summaries []*models.PeriodSummary, currency string) string {
	doc := newDoc(title)
	if len(summaries) == 0 {
		doc.PlainText("No projects yet.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Period", "Projects", "Value", "Planned days"},
	}
	for _, s := range summaries {
		table.Rows = append(table.Rows, cells(
			s.Period,
			strconv.Itoa(s.ProjectCount),
			money(s.TotalValue, currency),
			strconv.Itoa(s.TotalPlannedDays),
		))
	}
	doc.Table(table)
	return doc.String()
}

func partnersMarkdown(partners []*models.Partner, defaults []string) string {
	doc := newDoc("Partners")
	if len(partners) == 0 {
		doc.PlainTextf("No partners yet, using defaults: %s", strings.Join(defaults, ", "))
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Name", "Share"},
	}
	for _, p := range partners {
		table.Rows = append(table.Rows, cells(p.Name, percent(p.SharePercentage)))
	}
	doc.Table(table)
	return doc.String()
}

func scenariosMarkdown(scenarios []*models.Scenario) string {
	doc := newDoc("Scenarios")
	if len(scenarios) == 0 {
		doc.PlainText("No scenarios yet.")
		return doc.String()
	}

	for _, s := range scenarios {
		title := s.Name
		if s.IsDefault {
			title += " (default)"
		}
		doc.H2(title)
		if s.Description != "" {
			doc.PlainText(s.Description).PlainText("")
		}
		if len(s.Shares) == 0 {
			doc.PlainText("No shares defined.")
			continue
		}

		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
			Header:    []string{"Partner", "Share"},
		}
		for _, partner := range s.Shares.Partners() {
			table.Rows = append(table.Rows, cells(partner, percent(s.Shares[partner])))
		}
		doc.Table(table)
		if v := service.ValidateShares(s.Shares); !v.Valid {
			doc.PlainTextf("%s %s", md.Bold("Warning:"), v.Message)
		}
	}
	return doc.String()
}

func sharesValidationMarkdown(name string, v *models.ShareValidation) string {
	if v.Valid {
		return fmt.Sprintf("Shares of %s saved, %s.\n", md.Bold(name), v.Message)
	}
	return fmt.Sprintf("Shares of %s saved. %s %s\n", md.Bold(name), md.Bold("Warning:"), v.Message)
}

func worklogMarkdown(project *models.Project, entries []*models.AttendanceEntry, counts map[string]int, partners []string) string {
	doc := newDoc("Worklog: " + project.Name)

	totals := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Partner", "Worked days"},
	}
	for _, partner := range partners {
		totals.Rows = append(totals.Rows, cells(partner, strconv.Itoa(counts[partner])))
	}
	doc.Table(totals)

	if len(entries) == 0 {
		doc.PlainText("No attendance logged.")
		return doc.String()
	}

	doc.H2("Entries")
	entryTable := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft},
		Header:    []string{"Date", "Partner", "Status"},
	}
	for _, e := range entries {
		status := "absent"
		if e.Present {
			status = "present"
		}
		entryTable.Rows = append(entryTable.Rows, cells(e.Date.Format(dateLayout), e.Partner, status))
	}
	doc.Table(entryTable)
	return doc.String()
}

func payoutMarkdown(r *models.PayoutReport, currency string) string {
	doc := newDoc("Payout: " + r.ProjectName)

	source := r.Scenario
	switch r.ShareSource {
	case models.ShareSourceFallback:
		source += " (built-in fallback)"
	case models.ShareSourceNone:
		source += " (unknown, no shares)"
	}

	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{md.Bold("Scenario"), md.Bold(source)},
		Rows: [][]string{
			cells("Total value", money(r.TotalValue, currency)),
			cells("Firm cut ("+percent(r.FirmPercentage)+")", money(r.FirmCut, currency)),
			cells("Distributable", money(r.Distributable, currency)),
			cells("Planned days", strconv.Itoa(r.PlannedDays)),
			cells("Worked days", strconv.Itoa(r.TotalWorkedDays)),
		},
	})

	if len(r.Payouts) > 0 {
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
			Header:    []string{"Partner", "Share", "Worked days", "Payout"},
		}
		for _, p := range r.Payouts {
			table.Rows = append(table.Rows, cells(p.Partner, percent(p.SharePct), strconv.Itoa(p.WorkedDays), money(p.Payout, currency)))
		}
		doc.Table(table)
	} else {
		doc.PlainText("No partner has a share in this scenario.").PlainText("")
	}

	doc.PlainTextf("%s %s  ", md.Bold("Total paid:"), money(r.TotalPaid, currency))
	doc.PlainTextf("%s %s", md.Bold("Remaining:"), money(r.Remaining, currency))
	if r.OverPlan {
		doc.PlainText("").PlainTextf("%s worked days exceed the plan.", md.Bold("Warning:"))
	}
	return doc.String()
}

func auditMarkdown(entries []*models.AuditEntry) string {
	doc := newDoc("Audit trail")
	if len(entries) == 0 {
		doc.PlainText("No entries.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignLeft, md.AlignLeft, md.AlignLeft},
		Header:    []string{"When", "Entity", "ID", "Action", "Before", "After"},
	}
	for _, e := range entries {
		table.Rows = append(table.Rows, cells(
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			string(e.EntityType),
			strconv.FormatInt(e.EntityID, 10),
			string(e.Action),
			snapshotText(e.OldValue),
			snapshotText(e.NewValue),
		))
	}
	doc.Table(table)
	return doc.String()
}

func snapshotText(v map[string]any) string {
	if v == nil {
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
