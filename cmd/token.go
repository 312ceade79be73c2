package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LeiShi1313/readrepeat/internal/services/auth"
)

func newTokenCmd() *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token <worker-name>",
		Short: "Mint a bearer token for a worker",
		Long: `Mint a signed bearer token that lets a worker poll and report jobs.

The token is signed with worker.token_secret and must be minted with the same
secret the server runs with. Pass it to the worker as worker.token or --token.

Example:
  READREPEAT_WORKER_TOKEN_SECRET=change-me readrepeat token gpu-1 --ttl 720h`,
		Args: cobra.ExactArgs(1),
		RunE: runToken,
	}
	tokenCmd.Flags().Duration("ttl", 0, "token lifetime (overrides worker.token_ttl)")
	return tokenCmd
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Worker.TokenSecret == "" {
		return errors.New("worker.token_secret is not set")
	}

	ttl := cfg.Worker.TokenTTL
	if cmd.Flags().Changed("ttl") {
		ttl, _ = cmd.Flags().GetDuration("ttl")
	}

	token, err := auth.NewService(cfg.Worker.TokenSecret, ttl).Mint(args[0])
	if err != nil {
		return fmt.Errorf("failed to mint token: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
