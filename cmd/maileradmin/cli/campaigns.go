package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atinyakov/MailerAdmin/internal/client/gate"
	"github.com/atinyakov/MailerAdmin/internal/client/notify"
	"github.com/atinyakov/MailerAdmin/internal/client/screens"
)

func newCampaignsCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "campaigns",
		Aliases: []string{"campaign"},
		Short:   "Inspect campaigns and change their status",
	}
	cmd.AddCommand(newCampaignsListCmd(st))
	cmd.AddCommand(newCampaignsShowCmd(st))
	cmd.AddCommand(newCampaignsOverviewCmd(st))
	cmd.AddCommand(newCampaignActionCmd(st, "pause", "Pause an active campaign", (*screens.Campaigns).Pause))
	cmd.AddCommand(newCampaignActionCmd(st, "resume", "Resume a paused campaign", (*screens.Campaigns).Resume))
	cmd.AddCommand(newCampaignActionCmd(st, "stop", "Stop a campaign for good", (*screens.Campaigns).Stop))
	return cmd
}

func newCampaignsListCmd(st *state) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List campaigns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := st.app
			if !app.Navigate(cmd.Context(), gate.CampaignsPath) {
				return nil
			}
			campaigns := app.Campaigns()
			if err := campaigns.Load(cmd.Context()); err != nil {
				return err
			}
			rows := campaigns.Campaigns()
			if jsonOutput {
				return printJSON(app.out, rows)
			}
			if len(rows) == 0 {
				fmt.Fprintln(app.out, "No campaigns.")
				return nil
			}
			t := newTable(app.out, "ID", "NAME", "STATUS", "OWNER", "CREATED")
			for _, c := range rows {
				t.row(c.ID, c.Name, c.Status, c.UserID, formatTime(c.CreatedAt))
			}
			return t.flush()
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newCampaignsShowCmd(st *state) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a campaign with its delivery counters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := st.app
			if !app.Navigate(cmd.Context(), "/campaign/"+args[0]) {
				return nil
			}
			d, err := app.Campaigns().Detail(cmd.Context(), args[0])
			if err != nil {
				notify.Error(app.Notifier, "Failed to fetch campaign details")
				return shown(err)
			}
			if jsonOutput {
				return printJSON(app.out, d)
			}
			c, s := d.Campaign, d.Stats
			fmt.Fprintf(app.out, "%s\nid: %s\nstatus: %s\nowner: %s\nsubject: %s\ncreated: %s\n\n",
				c.Name, c.ID, c.Status, c.UserID, orDash(c.Subject), formatTime(c.CreatedAt))
			fmt.Fprintf(app.out, "sent: %d\nopens: %d\nreplies: %d\nbounces: %d\nengagement: %d%%\n",
				s.TotalSent, s.TotalOpens, s.TotalReplies, s.Bounces, s.EngagementRate())
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newCampaignsOverviewCmd(st *state) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Show totals across all campaigns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := st.app
			if !app.Navigate(cmd.Context(), gate.CampaignsPath) {
				return nil
			}
			o, err := app.Campaigns().Overview(cmd.Context())
			if err != nil {
				notify.Error(app.Notifier, "Failed to fetch campaign overview")
				return shown(err)
			}
			if jsonOutput {
				return printJSON(app.out, o)
			}
			fmt.Fprintf(app.out, "total: %d\nactive: %d\npaused: %d\ncompleted: %d\nsent: %d\n",
				o.Total, o.Active, o.Paused, o.Completed, o.TotalSent)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newCampaignActionCmd(st *state, use, short string, action func(*screens.Campaigns, context.Context, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := st.app
			if !app.Navigate(cmd.Context(), "/campaign/"+args[0]) {
				return nil
			}
			return action(app.Campaigns(), cmd.Context(), args[0])
		},
	}
}
