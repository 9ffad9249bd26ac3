package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"bizplan/internal/cli"
	"bizplan/internal/config"
	"bizplan/internal/services/storage"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Data directory encryption",
}

var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the data directory is encrypted",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, store, err := rawStorage()
		if err != nil {
			return err
		}
		st := store.Status()
		fmt.Fprint(cmd.OutOrStdout(), cli.RenderTable(cli.Table{
			Headers: []string{"Data directory", store.BaseDir()},
			Rows: [][]string{
				{"Encrypted", fmt.Sprint(st.Encrypted)},
				{"Unlocked", fmt.Sprint(st.Unlocked)},
			},
		}))
		return nil
	},
}

var storeEncryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Seal every plan file with a passphrase",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, store, err := rawStorage()
		if err != nil {
			return err
		}
		pw, err := newPassword(cfg)
		if err != nil {
			return err
		}
		if err := store.EnableEncryption(pw); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cli.Note("data directory encrypted, start the server with PLANNER_PASSWORD set"))
		return nil
	},
}

var storeUnlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Check the passphrase of an encrypted data directory",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, store, err := rawStorage()
		if err != nil {
			return err
		}
		if !store.Status().Encrypted {
			return storage.ErrNotEncrypted
		}
		pw, err := readPassword(cfg, "Password: ")
		if err != nil {
			return err
		}
		if err := store.Unlock(pw); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cli.Note("password accepted"))
		return nil
	},
}

var storeDecryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Remove encryption from the data directory",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, store, err := rawStorage()
		if err != nil {
			return err
		}
		pw, err := readPassword(cfg, "Password: ")
		if err != nil {
			return err
		}
		if err := store.DisableEncryption(pw); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cli.Note("data directory decrypted"))
		return nil
	},
}

func init() {
	storeCmd.AddCommand(storeStatusCmd, storeEncryptCmd, storeUnlockCmd, storeDecryptCmd)
	rootCmd.AddCommand(storeCmd)
}

// rawStorage opens the data directory without unlocking it
func rawStorage() (*config.Config, *storage.Storage, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := storage.New(cfg.DataDirectory)
	if err != nil {
		return nil, nil, err
	}
	return cfg, store, nil
}

// newPassword asks twice unless PLANNER_PASSWORD is set
func newPassword(cfg *config.Config) (string, error) {
	if cfg.Password != "" {
		return cfg.Password, nil
	}
	pw, err := readPassword(cfg, "New password: ")
	if err != nil {
		return "", err
	}
	confirm, err := readPassword(cfg, "Repeat password: ")
	if err != nil {
		return "", err
	}
	if pw != confirm {
		return "", errors.New("passwords do not match")
	}
	return pw, nil
}
