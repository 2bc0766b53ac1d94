package main

import (
	"errors"

	"github.com/spf13/cobra"
)

// errAuditDisabled is returned by the audit command when auditing is off.
var errAuditDisabled = errors.New("audit is disabled in the configuration")

func newAuditCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "audit <table>",
		Short: "List recent writes to a table, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				trail := a.trail()
				if trail == nil {
					return errAuditDisabled
				}
				logs, err := trail.List(cmd.Context(), args[0], limit)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), logs)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of entries (capped at 200)")
	return cmd
}
