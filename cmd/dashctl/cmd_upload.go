package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ndasurveying/dashctl/internal/domain"
	"github.com/ndasurveying/dashctl/internal/reports"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [kind] [file]",
	Short: "Upload a report workbook for processing",
	Long: fmt.Sprintf(`Sends an Excel workbook to the backend's report processor.

Kinds: %s. Only .xlsx and .xls files are accepted; the file is sniffed
locally before anything is sent. Requires the admin or staff role.`,
		strings.Join(kindNames(), ", ")),
	Args: cobra.ExactArgs(2),
	RunE: runUpload,
}

func kindNames() []string {
	names := make([]string, len(reports.Kinds))
	for i, kind := range reports.Kinds {
		names[i] = string(kind)
	}
	return names
}

func runUpload(cmd *cobra.Command, args []string) error {
	if _, err := requireRole(domain.RoleAdmin, domain.RoleStaff); err != nil {
		return err
	}

	kind, err := reports.ParseKind(args[0])
	if err != nil {
		return err
	}
	path := args[1]
	if err := reports.ValidateFile(path); err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return domain.Wrap(err, domain.EINVALID, "cli.upload", fmt.Sprintf("cannot read %q", path))
	}
	defer file.Close()

	msg, err := client.Upload(cmd.Context(), kind, path, file)
	if err != nil {
		return err
	}
	fmt.Println(msg)
	return nil
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}
