package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-assistant/internal/config"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print a bcrypt hash for INTERVIEWER_PASSWORD_HASH",
	Long:  "Hashes the interviewer password with the configured bcrypt cost and pepper. Without an argument the password is read from stdin.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		password := ""
		if len(args) == 1 {
			password = args[0]
		} else {
			password, err = readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
		}
		hash, err := hashPassword(cfg, password)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hashPasswordCmd)
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func hashPassword(cfg *config.Config, password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password must not be empty")
	}
	pw, err := cfg.Password()
	if err != nil {
		return "", err
	}
	return pw.HashPassword(password)
}
