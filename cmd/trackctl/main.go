// Command trackctl looks up and manages shipments from a terminal, using the
// same services as the HTTP API.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	publicURL string
	adminURL  string
	loginURL  string
	username  string
	password  string
	timeout   time.Duration
	verbose   bool
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "trackctl",
		Short:         "Track and manage SafePack shipments",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetOut(out)
	root.SetErr(out)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.publicURL, "public-url", envOr("PUBLIC_TRACKING_URL", "https://safepackglobaltravel.onrender.com/api/public/tracking"), "public tracking API base URL")
	pf.StringVar(&opts.adminURL, "admin-url", envOr("ADMIN_TRACKING_URL", "https://ghost.safepackglobaltravel.com/admin/tracking"), "admin tracking API base URL")
	pf.StringVar(&opts.loginURL, "login-url", envOr("ADMIN_LOGIN_URL", "https://ghost.safepackglobaltravel.com/admin/login"), "admin login URL")
	pf.StringVarP(&opts.username, "username", "u", os.Getenv("TRACKCTL_USERNAME"), "admin username")
	pf.StringVarP(&opts.password, "password", "p", os.Getenv("TRACKCTL_PASSWORD"), "admin password")
	pf.DurationVar(&opts.timeout, "timeout", 10*time.Second, "remote call timeout")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(
		newTrackCmd(opts),
		newListCmd(opts),
		newCreateCmd(opts),
		newEditCmd(opts),
		newUpdateCmd(opts),
		newDeleteCmd(opts),
	)
	return root
}

func (o *options) logger() *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func requireCredentials(o *options) error {
	if o.username == "" || o.password == "" {
		return fmt.Errorf("admin credentials required: pass --username/--password or set TRACKCTL_USERNAME/TRACKCTL_PASSWORD")
	}
	return nil
}
