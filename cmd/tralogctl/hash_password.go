package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ponta-ta-taro/tralog4/pkg"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print the bcrypt hash of a password",
	Long: `Print the bcrypt hash of a password, in the format stored for users and
share links. Useful for seeding or resetting accounts by hand.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := pkg.HashPassword(args[0])
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}
