package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <username> <password>",
	Short: "Authenticate and store the session credential",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.session.Login(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		id, _ := cli.session.Current()
		fmt.Printf("Logged in as %s (%s)\n", id.Username, id.Role)
		return nil
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup <username> <password>",
	Short: "Register a new account and log in",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.session.Signup(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		id, _ := cli.session.Current()
		fmt.Printf("Registered and logged in as %s\n", id.Username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored session credential",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli.session.Logout()
		fmt.Println("Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the active identity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := cli.requireIdentity()
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s)\n", id.Username, id.Role)
		return nil
	},
}
