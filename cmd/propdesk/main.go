package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"
	commit  = "main"
)

func main() {
	root := &cobra.Command{
		Use:           "propdesk",
		Short:         "Property listing management service",
		Long:          "A staff-facing service for managing property listings, their documents, and map links.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.Version = fmt.Sprintf("%s.%s", version, commit)

	root.AddCommand(newServeCommand())
	root.AddCommand(newMigrateCommand())
	root.AddCommand(newAdminCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
