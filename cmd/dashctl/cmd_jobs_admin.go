package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ndasurveying/dashctl/internal/domain"
)

var createJobParams domain.JobCreateParams

var createJobCmd = &cobra.Command{
	Use:   "create-job",
	Short: "Register a new job",
	Long: `Registers a new job with the backend. Requires the admin or staff role.

Example:
  dashctl create-job --code NDA-014 --name "Harbour View" --client "Acme Ltd" --value 180000`,
	RunE: runCreateJob,
}

var progressCmd = &cobra.Command{
	Use:   "progress [job-id] [percentage]",
	Short: "Update a job's completion percentage",
	Args:  cobra.ExactArgs(2),
	RunE:  runProgress,
}

func runCreateJob(cmd *cobra.Command, args []string) error {
	if _, err := requireRole(domain.RoleAdmin, domain.RoleStaff); err != nil {
		return err
	}
	if createJobParams.JobCode == "" || createJobParams.JobName == "" || createJobParams.Client == "" {
		return domain.Invalid("cli.create_job", "--code, --name and --client are required")
	}
	if createJobParams.ContractValue <= 0 {
		return domain.Invalid("cli.create_job", "--value must be a positive contract value")
	}

	job, err := client.CreateJob(cmd.Context(), createJobParams)
	if err != nil {
		return err
	}
	fmt.Printf("Created job %s (id %d).\n", job.JobCode, job.ID)
	return nil
}

func runProgress(cmd *cobra.Command, args []string) error {
	if _, err := requireRole(domain.RoleAdmin, domain.RoleStaff); err != nil {
		return err
	}
	id, err := parseJobID(args[0])
	if err != nil {
		return err
	}
	progress, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return domain.Invalid("cli.progress", fmt.Sprintf("%q is not a percentage", args[1]))
	}
	if err := client.UpdateJobProgress(cmd.Context(), id, progress); err != nil {
		return err
	}
	fmt.Printf("Job %d progress set to %.0f%%.\n", id, progress)
	return nil
}

func init() {
	createJobCmd.Flags().StringVar(&createJobParams.JobCode, "code", "", "unique job code")
	createJobCmd.Flags().StringVar(&createJobParams.JobName, "name", "", "job name")
	createJobCmd.Flags().StringVar(&createJobParams.Client, "client", "", "client name")
	createJobCmd.Flags().Float64Var(&createJobParams.ContractValue, "value", 0, "contract value")
	createJobCmd.Flags().StringVar(&createJobParams.StartDate, "start", "", "start date (YYYY-MM-DD)")

	rootCmd.AddCommand(createJobCmd)
	rootCmd.AddCommand(progressCmd)
}
