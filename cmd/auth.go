package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/supercal/internal/google"
)

func newAuthCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to Google Calendar",
		Long: `Authorize access to Google Calendar and store the resulting token.

Opens an OAuth consent flow: visit the printed URL, grant access, and paste
the authorization code back into the terminal. The token is stored in the
user cache directory and used by the server for requests that do not carry
their own Bearer token.

Requires GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET to be set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if google.HasToken() && !force {
				fmt.Println("A stored token already exists. Use --force to replace it.")
				return nil
			}

			fmt.Println("Visit the following URL to authorize access to Google Calendar:")
			fmt.Println()
			fmt.Printf("  %s\n", google.GetAuthURL())
			fmt.Println()
			fmt.Print("Enter the authorization code: ")

			reader := bufio.NewReader(os.Stdin)
			code, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read authorization code: %w", err)
			}
			code = strings.TrimSpace(code)
			if code == "" {
				return fmt.Errorf("no authorization code provided")
			}

			if err := google.SaveToken(context.Background(), code); err != nil {
				return fmt.Errorf("failed to exchange authorization code: %w", err)
			}

			fmt.Println("Token stored. The server can now access Google Calendar.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing stored token")
	return cmd
}
