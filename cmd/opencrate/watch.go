package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"github.com/nerrad567/opencrate/internal/infrastructure/mqtt"
)

// errMQTTDisabled is returned by watch when no broker is configured.
var errMQTTDisabled = errors.New("mqtt is disabled in the configuration")

func newWatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [table]",
		Short: "Print record changes published on the MQTT change feed",
		Long: `Subscribes to the change feed and prints one line per insert or update
until interrupted. Without a table every table is watched.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var table string
			if len(args) == 1 {
				table = args[0]
			}
			return withApp(opts, func(a *app) error {
				if a.mqtt == nil {
					return errMQTTDisabled
				}
				return watch(cmd.Context(), a.mqtt, table, cmd.OutOrStdout())
			})
		},
	}
}

// subscriber is the part of the MQTT client watch needs.
type subscriber interface {
	Topics() mqtt.Topics
	QoS() byte
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// watch prints changes for table until ctx is cancelled.
func watch(ctx context.Context, sub subscriber, table string, w io.Writer) error {
	topic := sub.Topics().RecordChanges(table)

	var mu sync.Mutex
	handler := func(_ string, payload []byte) error {
		ch, err := mqtt.DecodeChange(payload)
		if err != nil {
			return err
		}
		mu.Lock()
		defer mu.Unlock()
		_, err = fmt.Fprintf(w, "%s %-6s %s #%d (%s)\n",
			ch.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"), ch.Op, ch.Table, ch.ID, ch.EventID)
		return err
	}

	if err := sub.Subscribe(topic, sub.QoS(), handler); err != nil {
		return err
	}
	defer sub.Unsubscribe(topic) //nolint:errcheck // Best effort on shutdown

	<-ctx.Done()
	return nil
}
