package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ndasurveying/dashctl/cmd/dashctl/ui"
	"github.com/ndasurveying/dashctl/internal/domain"
	"github.com/ndasurveying/dashctl/internal/format"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List active alerts across all jobs",
	RunE:  runAlerts,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [alert-id]",
	Short: "Mark an alert as handled",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

func runAlerts(cmd *cobra.Command, args []string) error {
	if _, err := requireRole(); err != nil {
		return err
	}
	alerts, err := client.Alerts(cmd.Context())
	if err != nil {
		return err
	}

	styles := ui.DefaultStyles()
	if len(alerts) == 0 {
		fmt.Println(styles.Muted.Render("No active alerts."))
		return nil
	}
	for _, alert := range alerts {
		style := styles.AlertStyle(alert.Severity)
		fmt.Printf("%s [%d] %s %s\n",
			style.Render(format.AlertIndicator(alert.Severity)),
			alert.ID,
			styles.Muted.Render(alert.JobCode),
			alert.Message,
		)
	}
	return nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	if _, err := requireRole(domain.RoleAdmin, domain.RoleStaff); err != nil {
		return err
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return domain.Invalid("cli.resolve", fmt.Sprintf("%q is not an alert id", args[0]))
	}
	if err := client.ResolveAlert(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Printf("Alert %d resolved.\n", id)
	return nil
}

func init() {
	rootCmd.AddCommand(alertsCmd)
	rootCmd.AddCommand(resolveCmd)
}
