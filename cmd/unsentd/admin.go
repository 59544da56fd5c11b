package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tbourn/unsent-letters/internal/repo"
)

func migrateCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := bootstrap(*envFile)
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer closeDB(db)
			log.Info().Str("db", cfg.DB.Driver).Msg("schema up to date")
			return nil
		},
	}
}

// blockCmd adds an IP to the blocklist. There is no unblock command; a
// blocked IP stays blocked.
func blockCmd(envFile *string) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "block <ip>",
		Short: "Deny every interaction from an IP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ip := strings.TrimSpace(args[0])
			if ip == "" {
				return fmt.Errorf("ip must not be empty")
			}
			cfg, err := bootstrap(*envFile)
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer closeDB(db)

			b, err := repo.BlockIP(cmd.Context(), db, ip, strings.TrimSpace(reason))
			if err != nil {
				return fmt.Errorf("block %s: %w", ip, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "blocked %s since %s", b.IP, b.BlockedAt.UTC().Format(time.RFC3339))
			if b.Reason != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " (%s)", b.Reason)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "reason shown to the blocked actor")
	return cmd
}

func blocklistCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "blocklist",
		Short: "List blocked IPs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := bootstrap(*envFile)
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer closeDB(db)

			rows, err := repo.ListBlockedIPs(cmd.Context(), db)
			if err != nil {
				return fmt.Errorf("list blocklist: %w", err)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "IP\tBLOCKED AT\tREASON")
			for _, b := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", b.IP, b.BlockedAt.UTC().Format(time.RFC3339), b.Reason)
			}
			return tw.Flush()
		},
	}
}
