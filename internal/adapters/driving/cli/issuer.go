package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aguaralabs/facturante-cli/internal/core/domain"
)

var issuerCmd = &cobra.Command{
	Use:   "issuer",
	Short: "Manage issuer credentials",
	Long: `Add, list, and remove the portal credentials submissions run under.

Credentials are stored locally in the configuration directory and are
only ever sent to the portal's login page. The clave fiscal is prompted
for without echo; it never appears on the command line or in the shell
history.

Examples:
  # Add a monotributo issuer
  facturante issuer add 20111111112

  # Add a responsable inscripto issuer with a named company
  facturante issuer add 30222222223 --category responsable_inscripto --company "AGUARA LABS SRL"

  # List stored issuers
  facturante issuer list

  # Remove an issuer
  facturante issuer remove 20111111112`,
}

var issuerAddCmd = &cobra.Command{
	Use:   "add <cuit>",
	Short: "Store the credential for an issuer",
	Args:  cobra.ExactArgs(1),
	RunE:  runIssuerAdd,
}

var issuerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored issuers",
	RunE:  runIssuerList,
}

var issuerRemoveCmd = &cobra.Command{
	Use:   "remove <cuit>",
	Short: "Remove an issuer's credential",
	Args:  cobra.ExactArgs(1),
	RunE:  runIssuerRemove,
}

// Flags for issuer add.
var (
	issuerAddCategory string
	issuerAddCompany  string
)

func init() {
	issuerAddCmd.Flags().StringVar(
		&issuerAddCategory, "category", string(domain.CategoryMonotributo),
		"Tax regime (monotributo, responsable_inscripto)")
	issuerAddCmd.Flags().StringVar(
		&issuerAddCompany, "company", "",
		"Company name to pick when the login serves several companies")

	issuerCmd.AddCommand(issuerAddCmd)
	issuerCmd.AddCommand(issuerListCmd)
	issuerCmd.AddCommand(issuerRemoveCmd)
	rootCmd.AddCommand(issuerCmd)
}

func runIssuerAdd(cmd *cobra.Command, args []string) error {
	if credentialStore == nil {
		return errors.New("credential store not configured")
	}

	issuer, err := domain.ParseTaxID(args[0])
	if err != nil {
		return err
	}

	category := domain.IssuerCategory(issuerAddCategory)
	if !category.IsValid() {
		return fmt.Errorf("invalid category %q (want %s or %s)",
			issuerAddCategory, domain.CategoryMonotributo, domain.CategoryResponsableInscripto)
	}

	cmd.Printf("Clave fiscal for %s: ", issuer)
	clave := readPassword()
	cmd.Println()
	if clave == "" {
		return errors.New("clave fiscal is required")
	}

	cred := domain.Credential{
		Issuer:      issuer,
		ClaveFiscal: clave,
		Category:    category,
		CompanyName: issuerAddCompany,
	}

	ctx := context.Background()
	if err := credentialStore.Save(ctx, cred); err != nil {
		return fmt.Errorf("storing credential: %w", err)
	}

	cmd.Printf("Stored credential for %s (%s)\n", issuer, category)
	return nil
}

func runIssuerList(cmd *cobra.Command, _ []string) error {
	if credentialStore == nil {
		return errors.New("credential store not configured")
	}

	ctx := context.Background()
	creds, err := credentialStore.List(ctx)
	if err != nil {
		return fmt.Errorf("listing issuers: %w", err)
	}

	if len(creds) == 0 {
		cmd.Println("No stored issuers.")
		cmd.Println("Add one with: facturante issuer add <cuit>")
		return nil
	}

	cmd.Println("Stored issuers:")
	cmd.Println()
	for i := range creds {
		cmd.Printf("  %s\n", creds[i].Issuer)
		cmd.Printf("    Category: %s\n", creds[i].Category)
		if creds[i].CompanyName != "" {
			cmd.Printf("    Company: %s\n", creds[i].CompanyName)
		}
		cmd.Printf("    Added: %s\n", creds[i].CreatedAt.Format(time.RFC3339))
		cmd.Println()
	}

	return nil
}

func runIssuerRemove(cmd *cobra.Command, args []string) error {
	if credentialStore == nil {
		return errors.New("credential store not configured")
	}

	issuer, err := domain.ParseTaxID(args[0])
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := credentialStore.Delete(ctx, issuer); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no credential stored for %s", issuer)
		}
		return fmt.Errorf("removing credential: %w", err)
	}

	cmd.Printf("Removed credential for %s\n", issuer)
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
