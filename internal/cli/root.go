package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	debug bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pgembed",
	Short: "pgembed - embedded PostgreSQL lifecycle manager",
	Long: `pgembed manages the lifecycle of an embedded, locally-running PostgreSQL
server: it materializes the binaries and data directory, starts the server,
provisions logical databases, and prints the connection string a driver
needs to reach it. The same engine is exported to other runtimes as a
C-callable shared library (see ffi/).`,
	Version: "0.1.0-dev",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable normally suppressed debug logging")
}
