package main

import (
	"fmt"

	"github.com/spf13/cobra"

	id "aurum/pkg/domain"
)

type derivedAddresses struct {
	Program       string `json:"program"`
	Mint          string `json:"mint"`
	MintAuthority string `json:"mint_authority"`
	Account       string `json:"account,omitempty"`
	Delegate      string `json:"custody_delegate,omitempty"`
	Record        string `json:"redemption_record,omitempty"`
}

func newAddressCommand(load configLoader) *cobra.Command {
	var program string
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Derive program addresses",
		Long: `Derive the keyless addresses of a deployment. Every derivation is a
pure function of its inputs, so these match what the server computes.`,
	}
	cmd.PersistentFlags().StringVar(&program, "program", "", "program address (defaults to AURUM_PROGRAM_ID)")

	resolveProgram := func() (id.Address, error) {
		if program != "" {
			return id.ParseAddress(program)
		}
		cfg, err := load()
		if err != nil {
			return id.Address{}, err
		}
		return cfg.Token.ProgramID, nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "mint",
		Short: "Print the mint and mint authority of the program",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			prog, err := resolveProgram()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), baseAddresses(prog))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "account <owner>",
		Short: "Print the token account of owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := resolveProgram()
			if err != nil {
				return err
			}
			owner, err := id.ParseAddress(args[0])
			if err != nil {
				return fmt.Errorf("owner: %w", err)
			}
			out := baseAddresses(prog)
			out.Account = id.AssociatedAccount(owner, id.MintAddress(prog)).String()
			return writeJSON(cmd.OutOrStdout(), out)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delegate <user> <request-id>",
		Short: "Print the custody delegate and record address of a redemption",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := resolveProgram()
			if err != nil {
				return err
			}
			user, err := id.ParseAddress(args[0])
			if err != nil {
				return fmt.Errorf("user: %w", err)
			}
			reqID, err := id.ParseRequestID(args[1])
			if err != nil {
				return fmt.Errorf("request id: %w", err)
			}
			out := baseAddresses(prog)
			out.Account = id.AssociatedAccount(user, id.MintAddress(prog)).String()
			out.Delegate = id.CustodyDelegate(prog, user, reqID).String()
			out.Record = id.RedemptionRecordAddress(prog, user, reqID).String()
			return writeJSON(cmd.OutOrStdout(), out)
		},
	})
	return cmd
}

func baseAddresses(program id.Address) derivedAddresses {
	return derivedAddresses{
		Program:       program.String(),
		Mint:          id.MintAddress(program).String(),
		MintAuthority: id.MintAuthority(program).String(),
	}
}
