package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nerrad567/opencrate/internal/account"
	"github.com/nerrad567/opencrate/internal/audit"
	"github.com/nerrad567/opencrate/record"
)

func newUsersCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage the users table",
	}
	cmd.AddCommand(
		newUsersInitCmd(opts),
		newUsersAddCmd(opts),
		newUsersGetCmd(opts),
		newUsersSetCmd(opts),
		newUsersWhereCmd(opts),
	)
	return cmd
}

func newUsersInitCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the users (and audit_logs) tables if they do not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(a *app) error {
				db, err := a.connect(cmd.Context())
				if err != nil {
					return err
				}
				if err := account.EnsureSchema(cmd.Context(), db); err != nil {
					return err
				}
				if a.cfg.Audit.Enabled {
					if err := audit.EnsureSchema(cmd.Context(), db); err != nil {
						return err
					}
				}
				a.log.Info("users table ready", "driver", db.Driver())
				return nil
			})
		},
	}
}

func newUsersAddCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <email>",
		Short: "Register a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				u, err := a.users().Register(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), u)
			})
		},
	}
}

func newUsersGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id|ref>",
		Short: "Show one user by primary key or public reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				svc := a.users()

				var (
					u   *account.User
					err error
				)
				if strings.HasPrefix(args[0], account.RefPrefix) {
					u, err = svc.ByRef(cmd.Context(), args[0])
				} else {
					id, parseErr := parseID(args[0])
					if parseErr != nil {
						return parseErr
					}
					u, err = svc.Get(cmd.Context(), id)
				}
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), u)
			})
		},
	}
}

func newUsersSetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> <field=value>...",
		Short: "Change fields of a user",
		Long: `Assigns each field=value pair and saves the user. An empty value
(field=) sets the field to its zero value.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			fields, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}
			return withApp(opts, func(a *app) error {
				u, err := a.users().Set(cmd.Context(), id, fields)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), u)
			})
		},
	}
}

func newUsersWhereCmd(opts *rootOptions) *cobra.Command {
	var (
		first   bool
		limit   int
		orderBy string
	)

	cmd := &cobra.Command{
		Use:   "where <field> <value>",
		Short: "List users whose field equals value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qopts := record.Options{Limit: limit, OrderBy: orderBy}
			return withApp(opts, func(a *app) error {
				svc := a.users()
				if first {
					u, err := svc.First(cmd.Context(), args[0], args[1], qopts)
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), u)
				}
				us, err := svc.Where(cmd.Context(), args[0], args[1], qopts)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), us)
			})
		},
	}
	cmd.Flags().BoolVar(&first, "first", false, "return exactly one user or fail")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of users (0 for no limit)")
	cmd.Flags().StringVar(&orderBy, "order-by", "", `ordering such as "name" or "created_at DESC"`)
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", s)
	}
	return id, nil
}

// parseAssignments turns field=value arguments into a field map.
// An empty value maps to nil, which resets the field.
func parseAssignments(args []string) (map[string]any, error) {
	fields := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q, want field=value", arg)
		}
		if _, dup := fields[key]; dup {
			return nil, fmt.Errorf("field %q assigned twice", key)
		}
		if value == "" {
			fields[key] = nil
			continue
		}
		fields[key] = value
	}
	return fields, nil
}
