package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nerrad567/opencrate/record"
)

func newGenIDCmd() *cobra.Command {
	var (
		prefix string
		length int
		count  int
	)

	cmd := &cobra.Command{
		Use:   "genid",
		Short: "Generate random identifiers",
		Long: `Prints random identifiers of the given total length, prefix included.
When the prefix is as long as the requested length only the prefix is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if length < 0 || count < 1 {
				return fmt.Errorf("invalid length %d or count %d", length, count)
			}
			for range count {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), record.GenerateID(prefix, length)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&prefix, "prefix", "p", "", "identifier prefix")
	cmd.Flags().IntVarP(&length, "length", "l", 16, "total length including the prefix")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of identifiers")
	return cmd
}
