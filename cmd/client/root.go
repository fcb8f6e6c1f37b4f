package main

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"github.com/atinyakov/daybook/internal/client"
	"github.com/spf13/cobra"
)

// settings are the persistent flags shared by every command.
type settings struct {
	server      string
	caFile      string
	sessionFile string
	timeout     time.Duration
}

func (s *settings) client() (*client.Client, error) {
	httpClient, err := client.NewHTTPClient(s.caFile, s.timeout)
	if err != nil {
		return nil, err
	}
	return client.New(s.server, httpClient, client.NewFileStore(s.sessionFile)), nil
}

// withClient adapts a command body that needs an API client to cobra's RunE.
func (s *settings) withClient(run func(cmd *cobra.Command, c *client.Client, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := s.client()
		if err != nil {
			return err
		}
		return run(cmd, c, args)
	}
}

func newRootCmd() *cobra.Command {
	s := &settings{}

	root := &cobra.Command{
		Use:           "daybook",
		Short:         "Keep a daily journal from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&s.server, "server", cmp.Or(os.Getenv("DAYBOOK_SERVER"), "http://localhost:8080"), "server base URL")
	root.PersistentFlags().StringVar(&s.caFile, "ca", os.Getenv("DAYBOOK_CA"), "PEM file of the CA that signed the server certificate")
	root.PersistentFlags().StringVar(&s.sessionFile, "session-file", client.DefaultTokenPath(), "where the session token is kept")
	root.PersistentFlags().DurationVar(&s.timeout, "timeout", 10*time.Second, "request timeout")

	root.AddCommand(
		newRegisterCmd(s),
		newLoginCmd(s),
		newLogoutCmd(s),
		newStatusCmd(s),
		newListCmd(s),
		newShowCmd(s),
		newWriteCmd(s),
		newEditCmd(s),
		newDeleteCmd(s),
		newStatsCmd(s),
		newExportCmd(s),
		newAccountCmd(s),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build version and date",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Version: %s\nBuild date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		},
	}
}
