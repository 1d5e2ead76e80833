package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"aurum/internal/platform/config"
)

func newRootCommand() *cobra.Command {
	var dotenv string
	root := &cobra.Command{
		Use:   "aurumctl",
		Short: "Operator tooling for the aurum token controller",
		Long: `aurumctl creates ed25519 signing identities, issues the short-lived
signer assertions the API expects, derives program addresses and tails
the token event stream.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&dotenv, "env-file", ".env", "dotenv file loaded before reading configuration")

	load := func() (*config.Server, error) {
		return config.Load(dotenv)
	}

	root.AddCommand(
		newKeygenCommand(),
		newSignCommand(load),
		newAddressCommand(load),
		newEventsCommand(load),
	)
	return root
}

type configLoader func() (*config.Server, error)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
