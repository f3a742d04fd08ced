// Package cli implements the facturante command line interface.
//
// Commands talk to the core exclusively through the driving ports,
// injected as package-level services. Production wiring is installed by
// main through Execute and runs after flag parsing, so --config and
// --verbose are honoured before any service is built. Tests assign the
// service variables directly and never wire.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/aguaralabs/facturante-cli/internal/config"
	"github.com/aguaralabs/facturante-cli/internal/core/ports/driven"
	"github.com/aguaralabs/facturante-cli/internal/core/ports/driving"
	"github.com/aguaralabs/facturante-cli/internal/logger"
)

// version is the build version, set through Execute.
var version = "dev"

// Persistent flags.
var (
	verbose   bool
	configDir string
)

// Services used by the commands.
var (
	submitter        driving.BatchSubmitter
	submitterFactory func(headless bool) driving.BatchSubmitter
	credentialStore  driven.CredentialStore
	runArchive       driven.RunArchive
	appConfig        *config.Config
)

// wireFn builds the production services once the persistent flags are
// parsed. Nil when running under test.
var wireFn WireFunc

// Services groups everything the commands need. main builds one in its
// wire function; tests bypass it and set the package variables directly.
type Services struct {
	// Config is the loaded configuration file.
	Config *config.Config

	// Credentials stores issuer portal credentials.
	Credentials driven.CredentialStore

	// Archive persists finished run reports. Nil disables archiving.
	Archive driven.RunArchive

	// Submitter builds the batch submitter for a run. Headless is
	// resolved per invocation because the submit flags decide it.
	Submitter func(headless bool) driving.BatchSubmitter
}

// WireFunc builds the services for the resolved configuration directory.
type WireFunc func(configDir string) (*Services, error)

var rootCmd = &cobra.Command{
	Use:   "facturante",
	Short: "Batch-submit invoices to AFIP Comprobantes en Línea",
	Long: `facturante batch-submits tax invoices to the AFIP "Comprobantes en
Línea" portal by driving the portal's invoice wizard in an automated
browser.

Invoices are described in a JSON or YAML manifest, validated up front,
partitioned into issuer-exclusive batches and entered one wizard step
at a time, each invoice in its own portal session. Finished runs are
archived locally and can be inspected with 'facturante history'.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if wireFn == nil {
			return nil
		}
		svcs, err := wireFn(configDir)
		if err != nil {
			return err
		}
		appConfig = svcs.Config
		credentialStore = svcs.Credentials
		runArchive = svcs.Archive
		submitterFactory = svcs.Submitter
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "Enable diagnostic logging")
	rootCmd.PersistentFlags().StringVar(
		&configDir, "config", "", "Configuration directory (default ~/.facturante)")
}

// Execute runs the root command with the given build version and
// production wiring.
func Execute(ver string, wire WireFunc) error {
	version = ver
	wireFn = wire
	return rootCmd.Execute()
}

// activeSubmitter returns the injected submitter, building one through
// the wired factory when no test double is installed.
func activeSubmitter(headless bool) driving.BatchSubmitter {
	if submitter != nil {
		return submitter
	}
	if submitterFactory != nil {
		return submitterFactory(headless)
	}
	return nil
}
