package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	id "aurum/pkg/domain"
	"aurum/pkg/platform/middleware/signer"
)

const signerKeyEnv = "AURUM_SIGNER_KEY"

type keyOutput struct {
	Address string `json:"address"`
	Seed    string `json:"seed"`
}

func newKeygenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate an ed25519 signing identity",
		Long: `Generate an ed25519 keypair. The address is the hex public key; the
seed is the 32 byte private seed accepted by "aurumctl sign".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := generateKey(rand.Reader)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
}

func generateKey(random io.Reader) (keyOutput, error) {
	pub, priv, err := ed25519.GenerateKey(random)
	if err != nil {
		return keyOutput{}, fmt.Errorf("generate key: %w", err)
	}
	addr, err := id.AddressFromPublicKey(pub)
	if err != nil {
		return keyOutput{}, err
	}
	return keyOutput{Address: addr.String(), Seed: hex.EncodeToString(priv.Seed())}, nil
}

type tokenOutput struct {
	Token     string `json:"token"`
	Signer    string `json:"signer"`
	Audience  string `json:"audience"`
	ExpiresAt string `json:"expires_at"`
}

func newSignCommand(load configLoader) *cobra.Command {
	var (
		seed     string
		audience string
		ttl      time.Duration
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Issue a signer assertion for API calls",
		Long: `Issue a short-lived EdDSA bearer token proving control of a signing
key. The seed is read from --seed or the ` + signerKeyEnv + ` environment
variable. Audience and TTL default to the server configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if seed == "" {
				seed = os.Getenv(signerKeyEnv)
			}
			key, err := parseSeed(seed)
			if err != nil {
				return err
			}
			if audience == "" {
				audience = cfg.Signer.Audience
			}
			if ttl == 0 {
				ttl = cfg.Signer.MaxTTL
			}
			if ttl > cfg.Signer.MaxTTL {
				return fmt.Errorf("ttl %s exceeds the server maximum of %s", ttl, cfg.Signer.MaxTTL)
			}

			now := time.Now()
			token, err := signer.Issue(key, audience, ttl, now)
			if err != nil {
				return err
			}
			if !asJSON {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
				return err
			}
			addr, err := id.AddressFromPublicKey(key.Public().(ed25519.PublicKey))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), tokenOutput{
				Token:     token,
				Signer:    addr.String(),
				Audience:  audience,
				ExpiresAt: now.Add(ttl).UTC().Format(time.RFC3339),
			})
		},
	}
	cmd.Flags().StringVar(&seed, "seed", "", "hex encoded ed25519 seed")
	cmd.Flags().StringVar(&audience, "audience", "", "token audience (defaults to AURUM_SIGNER_AUDIENCE)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to AURUM_SIGNER_MAX_TTL)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the token with its claims as JSON")
	return cmd
}

func parseSeed(s string) (ed25519.PrivateKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("no signing seed: pass --seed or set " + signerKeyEnv)
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if len(raw) != ed25519.SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", ed25519.SeedSize, len(raw))
	}
	return ed25519.NewKeyFromSeed(raw), nil
}
