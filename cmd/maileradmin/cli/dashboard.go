package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atinyakov/MailerAdmin/internal/client/gate"
	"github.com/atinyakov/MailerAdmin/internal/client/screens"
	"github.com/atinyakov/MailerAdmin/internal/models"
)

func newDashboardCmd(st *state) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show headline stats and weekly engagement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := st.app
			if !app.Navigate(cmd.Context(), gate.DashboardPath) {
				return nil
			}
			data, err := screens.NewDashboard(app.Env()).Load(cmd.Context())
			if err != nil {
				return shown(err)
			}
			if jsonOutput {
				return printJSON(app.out, data)
			}
			printDashboard(app, data)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printDashboard(app *App, d *screens.DashboardData) {
	out := app.out
	fmt.Fprintf(out, "Emails sent:       %d\n", d.Stats.EmailsSent)
	fmt.Fprintf(out, "Active campaigns:  %d\n", d.Stats.ActiveCampaigns)
	fmt.Fprintf(out, "Engaged leads:     %d\n", d.Stats.EngagedLeads)
	fmt.Fprintf(out, "System health:     %s\n\n", d.Stats.SystemHealth)

	t := newTable(out, "DAY", "SENT", "OPENS", "REPLIES")
	for _, p := range d.Weekly {
		t.row(p.Day, p.Sent, p.Opens, p.Replies)
	}
	_ = t.flush()

	printEngagement(app, "By campaign", d.Breakdown.ByCampaign)
	printEngagement(app, "By user", d.Breakdown.ByUser)
}

func printEngagement(app *App, title string, rows []models.EngagementRow) {
	fmt.Fprintf(app.out, "\n%s\n", title)
	if len(rows) == 0 {
		fmt.Fprintln(app.out, "  no data")
		return
	}
	t := newTable(app.out, "NAME", "SENT", "REPLIES")
	for _, r := range rows {
		t.row(r.Name, r.Sent, r.Replies)
	}
	_ = t.flush()
}

func newBillingCmd(st *state) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "billing",
		Short: "Show each account's plan, limit and renewal date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := st.app
			if !app.Navigate(cmd.Context(), gate.BillingPath) {
				return nil
			}
			rows, err := screens.LoadBilling(cmd.Context(), app.Env())
			if err != nil {
				return shown(err)
			}
			if jsonOutput {
				return printJSON(app.out, rows)
			}
			if len(rows) == 0 {
				fmt.Fprintln(app.out, "No billing records.")
				return nil
			}
			t := newTable(app.out, "NAME", "EMAIL", "PLAN", "LIMIT", "PRICE", "STATUS", "EXPIRY")
			for _, r := range rows {
				t.row(r.Name, orDash(r.Email), r.Plan, r.EmailLimit, models.FormatCents(r.Price), r.Status, orDash(r.Expiry))
			}
			return t.flush()
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
