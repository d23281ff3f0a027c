package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atinyakov/MailerAdmin/internal/client/forms"
	"github.com/atinyakov/MailerAdmin/internal/client/gate"
	"github.com/atinyakov/MailerAdmin/internal/client/notify"
	"github.com/atinyakov/MailerAdmin/internal/client/screens"
	"github.com/atinyakov/MailerAdmin/internal/models"
)

func newPlansCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "plans",
		Aliases: []string{"plan"},
		Short:   "Manage subscription plans",
		Long: `Manage subscription plans.

Email limits can be staged with "plans stage" and sent with "plans save";
inside "maileradmin shell" staged limits survive between commands.`,
	}
	cmd.AddCommand(newPlansListCmd(st))
	cmd.AddCommand(newPlansAddCmd(st))
	cmd.AddCommand(newPlansSetLimitCmd(st))
	cmd.AddCommand(newPlansStageCmd(st))
	cmd.AddCommand(newPlansSaveCmd(st))
	cmd.AddCommand(newPlansResetCmd(st))
	cmd.AddCommand(newPlansRemoveCmd(st))
	return cmd
}

// loadPlan refreshes the plans screen and checks that name is on it.
func loadPlan(ctx context.Context, app *App, name string) (*screens.Plans, error) {
	plans := app.Plans()
	if err := plans.Load(ctx); err != nil {
		return nil, err
	}
	for _, p := range plans.Plans() {
		if p.Name == name {
			return plans, nil
		}
	}
	notify.Error(app.Notifier, fmt.Sprintf("Plan %q not found", name))
	return nil, shown(fmt.Errorf("plan %s not found", name))
}

func newPlansListCmd(st *state) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List plans with any staged limits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := st.app
			if !app.Navigate(cmd.Context(), gate.BillingPath) {
				return nil
			}
			plans := app.Plans()
			if err := plans.Load(cmd.Context()); err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(app.out, plans.Plans())
			}
			rows := plans.View()
			if len(rows) == 0 {
				fmt.Fprintln(app.out, "No plans.")
				return nil
			}
			t := newTable(app.out, "NAME", "LIMIT", "PRICE", "STRIPE PRICE", "DESCRIPTION")
			for _, r := range rows {
				limit := r.Limit
				if r.Edited {
					limit += " (unsaved)"
				}
				if r.Err != "" {
					limit += " ! " + r.Err
				}
				t.row(r.Name, limit, models.FormatCents(r.Price), orDash(r.StripePriceID), orDash(r.Description))
			}
			return t.flush()
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newPlansAddCmd(st *state) *cobra.Command {
	var f forms.Plan
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Create a plan",
		Example: `  maileradmin plans add --name starter --limit 500 --price 499 --stripe-price price_starter`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := st.app
			if !app.Navigate(cmd.Context(), gate.BillingPath) {
				return nil
			}
			if err := ask(&f.Name, app.prompt.Line, "Plan name: "); err != nil {
				return err
			}
			if err := ask(&f.EmailLimit, app.prompt.Line, "Email limit: "); err != nil {
				return err
			}
			return app.Plans().Add(cmd.Context(), f)
		},
	}
	cmd.Flags().StringVar(&f.Name, "name", "", "plan name, lowercase letters and digits")
	cmd.Flags().StringVar(&f.EmailLimit, "limit", "", "emails per billing period")
	cmd.Flags().StringVar(&f.Price, "price", "", "monthly price in cents")
	cmd.Flags().StringVar(&f.StripePriceID, "stripe-price", "", "Stripe price ID (price_...)")
	cmd.Flags().StringVar(&f.Description, "description", "", "free text")
	return cmd
}

func newPlansSetLimitCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "set-limit <name> <limit>",
		Short: "Change a plan's email limit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := st.app
			if !app.Navigate(cmd.Context(), gate.BillingPath) {
				return nil
			}
			plans, err := loadPlan(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			plans.StageLimit(args[0], args[1])
			return plans.SaveLimit(cmd.Context(), args[0])
		},
	}
}

func newPlansStageCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "stage <name> <limit>",
		Short: "Record a limit change without sending it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := st.app
			if !app.Navigate(cmd.Context(), gate.BillingPath) {
				return nil
			}
			plans, err := loadPlan(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			plans.StageLimit(args[0], args[1])
			fmt.Fprintf(app.out, "Limit %s staged for %s\n", args[1], args[0])
			return nil
		},
	}
}

func newPlansSaveCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "save <name>",
		Short: "Send the staged limit of a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := st.app
			if !app.Navigate(cmd.Context(), gate.BillingPath) {
				return nil
			}
			plans, err := loadPlan(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			return plans.SaveLimit(cmd.Context(), args[0])
		},
	}
}

func newPlansResetCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Drop every staged limit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := st.app
			if !app.Navigate(cmd.Context(), gate.BillingPath) {
				return nil
			}
			app.Plans().Reset()
			fmt.Fprintln(app.out, "Staged limits dropped")
			return nil
		},
	}
}

func newPlansRemoveCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm", "delete"},
		Short:   "Delete a plan",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := st.app
			if !app.Navigate(cmd.Context(), gate.BillingPath) {
				return nil
			}
			plans, err := loadPlan(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			return plans.Remove(cmd.Context(), args[0])
		},
	}
}
