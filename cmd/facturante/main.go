// Command facturante batch-submits tax invoices to the AFIP
// "Comprobantes en Línea" portal through an automated browser.
package main

import (
	"fmt"
	"os"

	"github.com/aguaralabs/facturante-cli/internal/adapters/driven/archive/sqlite"
	credentials "github.com/aguaralabs/facturante-cli/internal/adapters/driven/credentials/file"
	"github.com/aguaralabs/facturante-cli/internal/adapters/driven/portal"
	"github.com/aguaralabs/facturante-cli/internal/adapters/driving/cli"
	"github.com/aguaralabs/facturante-cli/internal/config"
	"github.com/aguaralabs/facturante-cli/internal/core/ports/driving"
	"github.com/aguaralabs/facturante-cli/internal/core/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.Execute(version, wire); err != nil {
		os.Exit(1)
	}
}

// wire builds the production services. It runs after flag parsing so
// the --config override is honoured.
func wire(configDir string) (*cli.Services, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	creds, err := credentials.NewCredentialStore(cfg.IssuersPath())
	if err != nil {
		return nil, fmt.Errorf("opening credential store: %w", err)
	}

	svcs := &cli.Services{
		Config:      cfg,
		Credentials: creds,
		Submitter: func(headless bool) driving.BatchSubmitter {
			return services.NewOrchestrator(creds, portal.NewFactory(headless))
		},
	}

	if !cfg.Archive.Disabled {
		archive, err := sqlite.NewStore(cfg.DatabasePath())
		if err != nil {
			return nil, fmt.Errorf("opening run archive: %w", err)
		}
		svcs.Archive = archive
	}

	return svcs, nil
}
