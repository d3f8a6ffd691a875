package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/chirino/pgembed/internal/config"
	"github.com/chirino/pgembed/internal/engine"
)

var (
	serveDataDir    string
	serveRuntimeDir string
	servePort       uint16
	servePassword   string
	serveCreateDB   string
)

// serveCmd starts an embedded server and keeps it running until interrupted.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an embedded PostgreSQL server and block until interrupted",
	Long: `Resolves settings from flags and PGEMBED_* environment variables, starts
the embedded server, optionally creates a database, prints the connection
string, and blocks until SIGINT/SIGTERM. The server is shut down and its
resources reclaimed before exiting.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "", "data directory (empty uses an engine-managed temp dir)")
	serveCmd.Flags().StringVar(&serveRuntimeDir, "runtime-dir", "", "runtime directory (empty uses an engine-managed temp dir)")
	serveCmd.Flags().Uint16Var(&servePort, "port", 0, "listening port (0 uses the engine default)")
	serveCmd.Flags().StringVar(&servePassword, "password", "", "superuser password (empty for none)")
	serveCmd.Flags().StringVar(&serveCreateDB, "create-db", "", "create this database after startup")
}

func runServe(cmd *cobra.Command, args []string) error {
	settings, err := config.Resolve(config.Overrides{
		DataDir:    &serveDataDir,
		RuntimeDir: &serveRuntimeDir,
		Port:       servePort,
		Password:   &servePassword,
	})
	if err != nil {
		return fmt.Errorf("failed to resolve settings: %w", err)
	}

	logger := log.New(io.Discard, "", 0)
	if debug {
		logger = log.New(os.Stderr, "pgembed: ", log.LstdFlags)
	}

	eng := engine.New(settings, engine.Options{Logger: logger})
	if err := eng.Setup(); err != nil {
		return err
	}
	if err := eng.Start(); err != nil {
		return err
	}

	if serveCreateDB != "" {
		if err := eng.CreateDatabase(serveCreateDB); err != nil {
			_ = eng.Stop()
			return err
		}
	}

	dsn, err := eng.ConnectionString(serveCreateDB)
	if err != nil {
		_ = eng.Stop()
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), dsn)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		return eng.Stop()
	})

	fmt.Fprintln(cmd.ErrOrStderr(), "engine running, press Ctrl+C to stop")
	return g.Wait()
}
