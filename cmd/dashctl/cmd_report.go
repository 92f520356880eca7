package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ndasurveying/dashctl/cmd/dashctl/ui"
	"github.com/ndasurveying/dashctl/internal/domain"
	"github.com/ndasurveying/dashctl/internal/format"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Portfolio reports",
}

var jobSummaryCmd = &cobra.Command{
	Use:   "job-summary",
	Short: "Executive summary of every job",
	RunE:  runJobSummary,
}

var financialSummaryCmd = &cobra.Command{
	Use:   "financial-summary",
	Short: "Portfolio financials broken down by status and client",
	RunE:  runFinancialSummary,
}

func runJobSummary(cmd *cobra.Command, args []string) error {
	if _, err := requireRole(); err != nil {
		return err
	}
	report, err := client.JobSummaryReport(cmd.Context())
	if err != nil {
		return err
	}

	styles := ui.DefaultStyles()
	fmt.Println(styles.Header.Render(fmt.Sprintf("Job summary · %s · %d jobs", report.ReportDate, report.TotalJobs)))

	table := ui.NewTable("", "Code", "Name", "Client", "Status", "Contract", "Costs", "Margin")
	for _, job := range report.Jobs {
		table.AddRow(
			job.JobCode,
			job.JobName,
			job.Client,
			string(job.Status),
			format.Currency(job.ContractValue),
			format.Currency(job.TotalCosts),
			format.Currency(job.ProjectedMargin),
		)
	}
	fmt.Println(table.View(styles))
	return nil
}

func printBreakdown(title string, breakdown map[string]domain.BreakdownEntry) {
	styles := ui.DefaultStyles()

	keys := make([]string, 0, len(breakdown))
	for key := range breakdown {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	table := ui.NewTable(title, "Group", "Jobs", "Value")
	for _, key := range keys {
		entry := breakdown[key]
		table.AddRow(key, fmt.Sprintf("%d", entry.Count), format.Currency(entry.TotalValue))
	}
	fmt.Println(table.View(styles))
}

func runFinancialSummary(cmd *cobra.Command, args []string) error {
	if _, err := requireRole(); err != nil {
		return err
	}
	report, err := client.FinancialSummaryReport(cmd.Context())
	if err != nil {
		return err
	}

	styles := ui.DefaultStyles()
	m := report.OverallMetrics
	fmt.Println(styles.Header.Render("Financial summary · " + report.ReportDate))
	fmt.Printf("  Contract value    %s\n", format.Currency(m.TotalContractValue))
	fmt.Printf("  Invoiced          %s\n", format.Currency(m.TotalInvoiced))
	fmt.Printf("  Costs             %s\n", format.Currency(m.TotalCosts))
	fmt.Printf("  Projected margin  %s\n", format.Currency(m.ProjectedMargin))
	fmt.Println()

	printBreakdown("By status", report.StatusBreakdown)
	fmt.Println()
	printBreakdown("By client", report.ClientBreakdown)
	return nil
}

func init() {
	reportCmd.AddCommand(jobSummaryCmd)
	reportCmd.AddCommand(financialSummaryCmd)
	rootCmd.AddCommand(reportCmd)
}
