package main

import (
	"crypto/rand"
	"fmt"

	"github.com/spf13/cobra"

	"xdao.co/wfledger/keys"
)

func newKeyCmd(a *app) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage signing keys",
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "", "key directory (default ~/.sawtooth/keys)")

	store := func() (*keys.KeyStore, error) { return keys.OpenKeyStore(dir) }

	var (
		name  string
		force bool
	)
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Create a new secp256k1 key pair",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			ks, err := store()
			if err != nil {
				return failure(err)
			}
			signer, err := ks.Generate(name, rand.Reader, force)
			if err != nil {
				return failure(err)
			}
			fmt.Fprintf(a.errOut, "wrote %s\n", ks.PrivatePath(name))
			fmt.Fprintln(a.out, signer.PublicKeyHex())
			return nil
		},
	}
	generate.Flags().StringVar(&name, "name", "client", "key name")
	generate.Flags().BoolVar(&force, "force", false, "overwrite an existing key")

	var from, role string
	derive := &cobra.Command{
		Use:   "derive",
		Short: "Derive a role key from a stored secp256k1 key",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			ks, err := store()
			if err != nil {
				return failure(err)
			}
			signer, err := ks.Derive(from, role, force)
			if err != nil {
				return failure(err)
			}
			fmt.Fprintf(a.errOut, "wrote %s\n", ks.PrivatePath(from+"-"+role))
			fmt.Fprintln(a.out, signer.PublicKeyHex())
			return nil
		},
	}
	derive.Flags().StringVar(&from, "from", "client", "root key name")
	derive.Flags().StringVar(&role, "role", "", "role name")
	derive.Flags().BoolVar(&force, "force", false, "overwrite an existing key")
	_ = derive.MarkFlagRequired("role")

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored key names",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			ks, err := store()
			if err != nil {
				return failure(err)
			}
			names, err := ks.List()
			if err != nil {
				return failure(err)
			}
			for _, n := range names {
				fmt.Fprintln(a.out, n)
			}
			return nil
		},
	}

	pubkey := &cobra.Command{
		Use:   "pubkey",
		Short: "Print the public key of the configured key file",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			signer, err := keys.LoadSignerFile(a.cfg.KeyFile)
			if err != nil {
				return failure(err)
			}
			fmt.Fprintln(a.out, signer.PublicKeyHex())
			return nil
		},
	}

	cmd.AddCommand(generate, derive, list, pubkey)
	return cmd
}
