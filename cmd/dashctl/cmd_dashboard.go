package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ndasurveying/dashctl/cmd/dashctl/ui"
	"github.com/ndasurveying/dashctl/internal/domain"
	"github.com/ndasurveying/dashctl/internal/format"
)

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Show portfolio metrics, the jobs summary and active alerts",
	RunE:  runOverview,
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List all jobs",
	RunE:  runJobs,
}

var jobCmd = &cobra.Command{
	Use:   "job [id]",
	Short: "Show the full financial analysis for one job",
	Args:  cobra.ExactArgs(1),
	RunE:  runJob,
}

func parseJobID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalid("cli.job", fmt.Sprintf("%q is not a job id", arg))
	}
	return id, nil
}

func runOverview(cmd *cobra.Command, args []string) error {
	if _, err := requireRole(); err != nil {
		return err
	}
	overview, err := client.Overview(cmd.Context())
	if err != nil {
		return err
	}

	styles := ui.DefaultStyles()
	m := overview.Metrics
	fmt.Println(styles.Header.Render("Portfolio"))
	fmt.Printf("  Contract value    %s\n", format.Currency(m.TotalContractValue))
	fmt.Printf("  Invoiced          %s\n", format.Currency(m.TotalInvoiced))
	fmt.Printf("  Costs             %s\n", format.Currency(m.TotalCosts))
	fmt.Printf("  Projected margin  %s\n", format.Currency(m.ProjectedMargin))
	fmt.Printf("  Unpaid invoices   %s\n", format.Currency(m.UnpaidInvoices))
	fmt.Printf("  Jobs              %d active, %d completed\n", m.ActiveJobsCount, m.CompletedJobsCount)
	fmt.Println()

	table := ui.NewTable("Jobs", "Code", "Name", "Client", "Status", "Progress", "Margin")
	for _, job := range overview.JobsSummary {
		table.AddRow(
			job.JobCode,
			job.JobName,
			job.Client,
			string(job.Status),
			format.Percentage(job.ProgressPercentage),
			format.Currency(job.ProjectedMargin),
		)
	}
	fmt.Println(table.View(styles))
	fmt.Println()

	if len(overview.Alerts) == 0 {
		fmt.Println(styles.Muted.Render("No active alerts."))
		return nil
	}
	fmt.Println(styles.Header.Render(fmt.Sprintf("Alerts (%d)", len(overview.Alerts))))
	for _, alert := range overview.Alerts {
		style := styles.AlertStyle(alert.Severity)
		fmt.Printf("  %s [%d] %s %s\n",
			style.Render(format.AlertIndicator(alert.Severity)),
			alert.ID, styles.Muted.Render(alert.JobCode), alert.Message)
	}
	return nil
}

func runJobs(cmd *cobra.Command, args []string) error {
	if _, err := requireRole(); err != nil {
		return err
	}
	jobs, err := client.Jobs(cmd.Context())
	if err != nil {
		return err
	}

	table := ui.NewTable("", "ID", "Code", "Name", "Client", "Status", "Progress")
	for _, job := range jobs {
		table.AddRow(
			strconv.FormatInt(job.ID, 10),
			job.JobCode,
			job.JobName,
			job.Client,
			string(job.Status),
			format.Percentage(job.ProgressPercentage),
		)
	}
	fmt.Println(table.View(ui.DefaultStyles()))
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	if _, err := requireRole(); err != nil {
		return err
	}
	id, err := parseJobID(args[0])
	if err != nil {
		return err
	}
	details, err := client.JobDetails(cmd.Context(), id)
	if err != nil {
		return err
	}

	styles := ui.DefaultStyles()
	info := details.JobInfo
	fmt.Println(styles.Header.Render(fmt.Sprintf("%s · %s", info.JobCode, info.JobName)))
	fmt.Printf("  Client    %s\n", info.Client)
	fmt.Printf("  Status    %s (%s complete)\n", info.Status, format.Percentage(info.ProgressPercentage))
	if info.StartDate != "" {
		fmt.Printf("  Dates     %s → %s\n", info.StartDate, info.ExpectedCompletion)
	}
	fmt.Println()

	m := details.Metrics
	fmt.Println(styles.Header.Render("Financials"))
	fmt.Printf("  Contract  %s (amended %s)\n", format.Currency(m.ContractValue), format.Currency(m.AmendedValue))
	fmt.Printf("  Invoiced  %s    Costs  %s\n", format.Currency(m.InvoicedAmount), format.Currency(m.TotalCosts))
	fmt.Printf("  Margin    %s (%s)\n", format.Currency(m.ProjectedMargin), format.Percentage(m.MarginPercentage))
	fmt.Printf("  Unpaid    %s across %d invoices\n", format.Currency(m.UnpaidInvoices), details.Invoices.UnpaidCount)
	fmt.Println()

	if len(details.Budgets) > 0 {
		table := ui.NewTable("Budgets", "Category", "Budgeted", "Spent", "Variance")
		for _, line := range details.Budgets {
			table.AddRow(
				line.Category,
				format.Currency(line.BudgetedAmount),
				format.Currency(line.ActualSpent),
				format.Currency(line.Variance),
			)
		}
		fmt.Println(table.View(styles))
		fmt.Println()
	}

	if len(details.Variations) > 0 {
		table := ui.NewTable("Variations", "Number", "Description", "Amount", "Status")
		for _, v := range details.Variations {
			table.AddRow(v.VariationNumber, v.Description, format.Currency(v.Amount), string(v.Status))
		}
		fmt.Println(table.View(styles))
		fmt.Println()
	}

	for _, alert := range details.Alerts {
		style := styles.AlertStyle(alert.Severity)
		fmt.Printf("%s %s\n", style.Render(format.AlertIndicator(alert.Severity)), alert.Message)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(overviewCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(jobCmd)
}
