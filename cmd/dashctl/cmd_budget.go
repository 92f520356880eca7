package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ndasurveying/dashctl/cmd/dashctl/ui"
	"github.com/ndasurveying/dashctl/internal/domain"
	"github.com/ndasurveying/dashctl/internal/format"
)

var budgetCheckJobID int64

var budgetCmd = &cobra.Command{
	Use:   "budget [job-id]",
	Short: "Show the per-category budget position for a job",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetStatus,
}

var budgetCheckCmd = &cobra.Command{
	Use:   "check-budgets",
	Short: "Run the backend budget sweep and generate alerts",
	Long: `Asks the backend to re-evaluate budget thresholds and raise alerts for
any category over its warning level. Checks every job unless --job limits
the sweep. Requires the admin or staff role.`,
	RunE: runBudgetCheck,
}

func printBudgetStatus(status *domain.BudgetStatus) {
	styles := ui.DefaultStyles()
	fmt.Println(styles.Header.Render("Budget position · " + status.JobCode))

	categories := make([]string, 0, len(status.Categories))
	for category := range status.Categories {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	table := ui.NewTable("", "Category", "Budget", "Actual", "Used", "Remaining")
	for _, category := range categories {
		cat := status.Categories[category]
		used := styles.BudgetStyle(format.BudgetSeverity(cat.PercentageUsed)).
			Render(format.Percentage(cat.PercentageUsed))
		table.AddRow(
			category,
			format.Currency(cat.BudgetAmount),
			format.Currency(cat.ActualAmount),
			used,
			format.Currency(cat.RemainingBudget),
		)
	}
	fmt.Println(table.View(styles))
	if status.LastUpdated != "" {
		fmt.Println(styles.Muted.Render("Last updated " + status.LastUpdated))
	}
}

func runBudgetStatus(cmd *cobra.Command, args []string) error {
	if _, err := requireRole(); err != nil {
		return err
	}
	id, err := parseJobID(args[0])
	if err != nil {
		return err
	}
	status, err := client.BudgetStatus(cmd.Context(), id)
	if err != nil {
		return err
	}
	printBudgetStatus(status)
	return nil
}

func runBudgetCheck(cmd *cobra.Command, args []string) error {
	if _, err := requireRole(domain.RoleAdmin, domain.RoleStaff); err != nil {
		return err
	}

	if budgetCheckJobID > 0 {
		status, err := client.CheckJobBudget(cmd.Context(), budgetCheckJobID)
		if err != nil {
			return err
		}
		printBudgetStatus(status)
		return nil
	}

	msg, err := client.CheckAllBudgets(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Println(msg)
	return nil
}

func init() {
	budgetCheckCmd.Flags().Int64Var(&budgetCheckJobID, "job", 0, "check a single job instead of all")

	rootCmd.AddCommand(budgetCmd)
	rootCmd.AddCommand(budgetCheckCmd)
}
