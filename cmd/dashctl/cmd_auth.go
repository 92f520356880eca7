package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ndasurveying/dashctl/cmd/dashctl/ui"
	"github.com/ndasurveying/dashctl/internal/domain"
)

var loginUsername string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate and store a session token",
	Long: `Exchanges credentials for a bearer token and saves it locally.

The password is read from an interactive prompt, or from the
DASHBOARD_PASSWORD environment variable for scripted use. It is never
accepted as a flag.`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE:  runWhoami,
}

func runLogin(cmd *cobra.Command, args []string) error {
	username := loginUsername
	password := os.Getenv("DASHBOARD_PASSWORD")

	if username == "" || password == "" {
		model, err := tea.NewProgram(ui.NewLogin(username)).Run()
		if err != nil {
			return fmt.Errorf("login prompt: %w", err)
		}
		prompt := model.(ui.LoginModel)
		if prompt.Aborted() {
			return nil
		}
		username, password = prompt.Credentials()
	}
	if username == "" || password == "" {
		return domain.Invalid("cli.login", "username and password are required")
	}

	sess, err := client.Login(cmd.Context(), username, password)
	if err != nil {
		return err
	}
	if err := sessions.Save(sess); err != nil {
		return err
	}

	fmt.Printf("Logged in as %s (%s)\n", username, sess.Role)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	if err := sessions.Clear(); err != nil {
		return err
	}
	fmt.Println("Session cleared.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	sess, err := sessions.Load()
	if err != nil {
		return err
	}
	if !sess.Authenticated() {
		fmt.Println("Not logged in.")
		return nil
	}
	fmt.Printf("Role:    %s\n", sess.Role)
	fmt.Printf("Session: %s\n", sessions.Path())
	fmt.Printf("Backend: %s\n", client.BaseURL())
	return nil
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "account username")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}
