package main

import (
	"fmt"

	"github.com/atinyakov/daybook/internal/client"
	"github.com/spf13/cobra"
)

type credentialFlags struct {
	username string
	pin      string
}

func (f *credentialFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&f.pin, "pin", "p", "", "4-6 digit PIN (prompted when omitted)")
}

// resolve prompts for whatever was not given on the command line.
func (f *credentialFlags) resolve(cmd *cobra.Command) (string, string, error) {
	username, pin := f.username, f.pin
	var err error
	if username == "" {
		if username, err = client.PromptLine(cmd.InOrStdin(), cmd.OutOrStdout(), "Username: "); err != nil {
			return "", "", err
		}
	}
	if pin == "" {
		if pin, err = client.PromptLine(cmd.InOrStdin(), cmd.OutOrStdout(), "PIN: "); err != nil {
			return "", "", err
		}
	}
	return username, pin, nil
}

func newRegisterCmd(s *settings) *cobra.Command {
	var creds credentialFlags
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: s.withClient(func(cmd *cobra.Command, c *client.Client, _ []string) error {
			username, pin, err := creds.resolve(cmd)
			if err != nil {
				return err
			}
			msg, err := c.Register(cmd.Context(), username, pin)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		}),
	}
	creds.register(cmd)
	return cmd
}

func newLoginCmd(s *settings) *cobra.Command {
	var creds credentialFlags
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Args:  cobra.NoArgs,
		RunE: s.withClient(func(cmd *cobra.Command, c *client.Client, _ []string) error {
			username, pin, err := creds.resolve(cmd)
			if err != nil {
				return err
			}
			msg, err := c.Login(cmd.Context(), username, pin)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		}),
	}
	creds.register(cmd)
	return cmd
}

func newLogoutCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: s.withClient(func(cmd *cobra.Command, c *client.Client, _ []string) error {
			msg, err := c.Logout(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		}),
	}
}

func newStatusCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether you are logged in",
		Args:  cobra.NoArgs,
		RunE: s.withClient(func(cmd *cobra.Command, c *client.Client, _ []string) error {
			ok, err := c.Session(cmd.Context())
			if err != nil {
				return err
			}
			if ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Logged in")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
			}
			return nil
		}),
	}
}

func newAccountCmd(s *settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Show or change account settings",
		Args:  cobra.NoArgs,
		RunE: s.withClient(func(cmd *cobra.Command, c *client.Client, _ []string) error {
			u, err := c.Account(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Username: %s\nMember since: %s\n", u.Username, u.CreatedAt.Format("Jan 2006"))
			return nil
		}),
	}

	rename := &cobra.Command{
		Use:   "rename <new-username>",
		Short: "Change your username",
		Args:  cobra.ExactArgs(1),
		RunE: s.withClient(func(cmd *cobra.Command, c *client.Client, args []string) error {
			msg, err := c.UpdateUsername(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		}),
	}

	var current, next string
	pin := &cobra.Command{
		Use:   "pin",
		Short: "Change your PIN",
		Args:  cobra.NoArgs,
		RunE: s.withClient(func(cmd *cobra.Command, c *client.Client, _ []string) error {
			var err error
			if current == "" {
				if current, err = client.PromptLine(cmd.InOrStdin(), cmd.OutOrStdout(), "Current PIN: "); err != nil {
					return err
				}
			}
			if next == "" {
				if next, err = client.PromptLine(cmd.InOrStdin(), cmd.OutOrStdout(), "New PIN: "); err != nil {
					return err
				}
			}
			msg, err := c.UpdatePin(cmd.Context(), current, next)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		}),
	}
	pin.Flags().StringVar(&current, "current", "", "current PIN")
	pin.Flags().StringVar(&next, "new", "", "new PIN")

	cmd.AddCommand(rename, pin)
	return cmd
}
