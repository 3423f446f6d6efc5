package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/pokerleague/internal/services/auth"
)

// TokenResult is printed by the token commands
type TokenResult struct {
	Token string `json:"token,omitempty"`
	Hash  string `json:"hash"`
}

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Admin token helpers",
	}

	cmd.AddCommand(newTokenGenerateCmd())
	cmd.AddCommand(newTokenHashCmd())

	return cmd
}

func newTokenGenerateCmd() *cobra.Command {
	var (
		save bool
		cost int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an admin token and the hash to configure on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			token := auth.GenerateToken()
			hash, err := auth.HashToken(token, cost)
			if err != nil {
				return err
			}
			if save {
				if err := cfg.SaveToken(token); err != nil {
					return err
				}
			}
			printToken(cmd, TokenResult{Token: token, Hash: hash})
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Write the token to the token file")
	cmd.Flags().IntVar(&cost, "cost", 0, "bcrypt cost (0 for the default)")

	return cmd
}

func newTokenHashCmd() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash <token>",
		Short: "Print the bcrypt hash of an existing token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashToken(args[0], cost)
			if err != nil {
				return err
			}
			printToken(cmd, TokenResult{Hash: hash})
			return nil
		},
	}

	cmd.Flags().IntVar(&cost, "cost", 0, "bcrypt cost (0 for the default)")

	return cmd
}

func printToken(cmd *cobra.Command, result TokenResult) {
	out := output(cmd)
	if cfg.Output == "json" {
		out.Print(result)
		return
	}
	if result.Token != "" {
		out.PrintMessage("Token: " + result.Token)
	}
	out.PrintMessage("Hash:  " + result.Hash)
}
