package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify database, MQTT and InfluxDB connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(a *app) error {
				return runCheck(cmd.Context(), a, cmd.OutOrStdout())
			})
		},
	}
}

// runCheck reports one line per enabled service and fails if any is unhealthy.
func runCheck(ctx context.Context, a *app, w io.Writer) error {
	var errs []error

	db, err := a.connect(ctx)
	if err == nil {
		err = db.HealthCheck(ctx)
	}
	errs = append(errs, report(w, "database ("+a.cfg.Database.Type+")", err))

	if a.mqtt != nil {
		errs = append(errs, report(w, "mqtt", a.mqtt.HealthCheck(ctx)))
	}
	if a.influx != nil {
		errs = append(errs, report(w, "influxdb", a.influx.HealthCheck(ctx)))
	}
	return errors.Join(errs...)
}

// report prints the outcome for one service and returns err annotated with its name.
func report(w io.Writer, name string, err error) error {
	if err != nil {
		fmt.Fprintf(w, "%-20s FAIL  %v\n", name, err)
		return fmt.Errorf("%s: %w", name, err)
	}
	fmt.Fprintf(w, "%-20s ok\n", name)
	return nil
}
