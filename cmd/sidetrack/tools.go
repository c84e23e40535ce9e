package main

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/sidetrack/internal/cli"
	"github.com/terraincognita07/sidetrack/internal/db"
	"github.com/terraincognita07/sidetrack/internal/mcpserver"
)

func newSummaryCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "summary",
		Short: "Print the side effect summary for an exported entries file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			window, _ := cmd.Flags().GetString("window")
			if path == "" {
				return errors.New("--file is required")
			}
			return cli.RunSummaryCommand(path, window, time.Now(), cmd.OutOrStdout())
		},
	}
	command.Flags().String("file", "", "path to an exported entries JSON file")
	command.Flags().String("window", "all", "number of days to include, or 'all'")
	return command
}

func newMCPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve household report tools over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log.SetOutput(os.Stderr)

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			database, err := openDatabase(cfg)
			if err != nil {
				return err
			}

			repositories := db.NewRepositories(database)
			server := mcpserver.NewReportServer(version, repositories.Households, repositories.Entries, repositories.Users, nil)
			return server.Start()
		},
	}
}

func newRevokeSharesCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "revoke-shares",
		Short: "Revoke every share link of the household an email owns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			database, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			return cli.RunRevokeSharesCommand(database, email, cmd.OutOrStdout())
		},
	}
	command.Flags().String("email", "", "email of the household owner")
	_ = command.MarkFlagRequired("email")
	return command
}
