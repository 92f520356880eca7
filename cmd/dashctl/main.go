// dashctl is the terminal client for the NDA Surveying QS dashboard backend.
// One-shot subcommands cover every API operation; `dashctl watch` runs the
// live dashboard.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ndasurveying/dashctl/internal"
	"github.com/ndasurveying/dashctl/internal/api"
	"github.com/ndasurveying/dashctl/internal/auth"
	"github.com/ndasurveying/dashctl/internal/domain"
	"github.com/ndasurveying/dashctl/internal/session"
)

var (
	// Global flags
	apiURLFlag string
	verbose    bool

	// Wired in PersistentPreRunE, shared by every subcommand
	cfg      *internal.Config
	logger   *slog.Logger
	sessions *session.Store
	client   *api.Client
)

var rootCmd = &cobra.Command{
	Use:   "dashctl",
	Short: "NDA Surveying QS dashboard client",
	Long: `dashctl talks to the NDA Surveying quantity-surveying dashboard backend.

Log in once with 'dashctl login'; the session token is stored locally and
attached to every subsequent call. Run 'dashctl watch' for the live
dashboard, or use the one-shot subcommands for scripting.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initApp,
}

func initApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = internal.NewConfig()
	if err != nil {
		return err
	}
	if apiURLFlag != "" {
		cfg.APIURL = apiURLFlag
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	logOut := os.Stderr
	if cfg.LogFile == "" && cmd.Name() == "watch" {
		// The TUI owns the terminal; stderr logging would corrupt it.
		cfg.LogFile = filepath.Join(filepath.Dir(cfg.SessionPath), "dashctl.log")
	}
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o700); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		logOut = f
	}
	logger = internal.NewLogger(logOut, cfg.Env, cfg.LogLevel)

	sessions = session.NewStore(cfg.SessionPath)

	client, err = api.New(api.Config{
		BaseURL:  cfg.APIURL,
		Timeout:  cfg.APITimeout,
		Sessions: sessions,
		Logger:   logger,
	})
	return err
}

// requireRole loads the stored session and checks it against the allowed
// roles. An empty role list admits any authenticated session.
func requireRole(roles ...domain.Role) (domain.Session, error) {
	sess, err := sessions.Load()
	if err != nil {
		return domain.Session{}, err
	}
	if err := auth.Authorize(sess, roles...); err != nil {
		return domain.Session{}, err
	}
	return sess, nil
}

func main() {
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "backend base URL (overrides DASHBOARD_API_URL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", domain.ErrorMessage(err))
		if domain.ErrorCode(err) == domain.EUNAUTHORIZED {
			fmt.Fprintln(os.Stderr, "Run 'dashctl login' to start a session.")
		}
		os.Exit(1)
	}
}
