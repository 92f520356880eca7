package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ndasurveying/dashctl/internal/domain"
)

var cvrOutput string

var cvrCmd = &cobra.Command{
	Use:   "cvr",
	Short: "Cost-value reconciliation workbook operations",
}

var cvrProcessCmd = &cobra.Command{
	Use:   "process",
	Short: "Run the backend CVR auto-update",
	Long: `Rebuilds the master CVR workbook from the latest uploaded reports.
Requires the admin or staff role.`,
	RunE: runCVRProcess,
}

var cvrDownloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the processed CVR workbook",
	RunE:  runCVRDownload,
}

func runCVRProcess(cmd *cobra.Command, args []string) error {
	if _, err := requireRole(domain.RoleAdmin, domain.RoleStaff); err != nil {
		return err
	}
	processed, err := client.ProcessCVR(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("CVR processed: %s\n", processed)
	return nil
}

func runCVRDownload(cmd *cobra.Command, args []string) error {
	if _, err := requireRole(domain.RoleAdmin, domain.RoleStaff); err != nil {
		return err
	}

	// Stream into a temp file first so a failed download never truncates an
	// existing workbook.
	tmp, err := os.CreateTemp("", "dashctl-cvr-*.xlsx")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	filename, err := client.DownloadCVR(cmd.Context(), tmp)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}

	target := cvrOutput
	if target == "" {
		target = filename
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("write %q: %w", target, err)
	}
	fmt.Printf("Saved %s\n", target)
	return nil
}

func init() {
	cvrDownloadCmd.Flags().StringVarP(&cvrOutput, "output", "o", "", "output path (defaults to the backend's filename)")

	cvrCmd.AddCommand(cvrProcessCmd)
	cvrCmd.AddCommand(cvrDownloadCmd)
	rootCmd.AddCommand(cvrCmd)
}
