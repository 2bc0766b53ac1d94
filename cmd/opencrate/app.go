package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/nerrad567/opencrate/database"
	"github.com/nerrad567/opencrate/internal/account"
	"github.com/nerrad567/opencrate/internal/audit"
	"github.com/nerrad567/opencrate/internal/infrastructure/config"
	"github.com/nerrad567/opencrate/internal/infrastructure/influxdb"
	"github.com/nerrad567/opencrate/internal/infrastructure/logging"
	"github.com/nerrad567/opencrate/internal/infrastructure/mqtt"
	"github.com/nerrad567/opencrate/record"
)

// app holds the services a command runs against.
// Fields for disabled integrations stay nil.
type app struct {
	cfg    *config.Config
	log    *logging.Logger
	db     *database.Handle
	mqtt   *mqtt.Client
	influx *influxdb.Client
}

// setup loads configuration and connects the enabled integrations.
// The database itself is opened lazily by the first statement.
func setup(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	a := &app{cfg: cfg, log: logging.New(cfg.Logging, version)}
	a.log.Debug("configuration loaded", "path", configPath, "driver", cfg.Database.Type)
	a.db = database.NewHandle(cfg.Database.Connection())

	if cfg.MQTT.Enabled {
		a.mqtt, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connecting to MQTT: %w", err)
		}
		a.mqtt.SetLogger(a.log.Component("mqtt"))
		a.mqtt.SetOnDisconnect(func(err error) {
			a.log.Warn("MQTT disconnected", "error", err)
		})
		a.log.Debug("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	}

	a.influx, err = influxdb.Connect(cfg.InfluxDB)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		a.log.Debug("InfluxDB disabled")
	case err != nil:
		a.Close()
		return nil, fmt.Errorf("connecting to InfluxDB: %w", err)
	default:
		a.influx.SetOnError(func(err error) {
			a.log.Error("InfluxDB write error", "error", err)
		})
	}

	return a, nil
}

// users returns the users service with logging and every enabled observer.
func (a *app) users() *account.Service {
	opts := []record.Option{record.WithLogger(a.log.Component("record"))}
	if a.mqtt != nil {
		opts = append(opts, record.WithObserver(mqtt.NewChangeFeed(a.mqtt, a.mqtt.Topics(), a.mqtt.QoS())))
	}
	if a.influx != nil {
		opts = append(opts, record.WithObserver(influxdb.NewStatementRecorder(a.influx)))
	}
	if trail := a.trail(); trail != nil {
		opts = append(opts, record.WithObserver(trail))
	}
	return account.NewService(a.db, opts...)
}

// trail returns the audit trail, or nil when auditing is disabled.
func (a *app) trail() *audit.Trail {
	if !a.cfg.Audit.Enabled {
		return nil
	}
	return audit.NewTrail(a.db, a.cfg.Audit.Source, record.WithLogger(a.log.Component("audit")))
}

// Close releases connections in reverse order of setup.
func (a *app) Close() {
	if a.influx != nil {
		if err := a.influx.Close(); err != nil {
			a.log.Error("error closing InfluxDB", "error", err)
		}
	}
	if a.mqtt != nil {
		if err := a.mqtt.Close(); err != nil {
			a.log.Error("error closing MQTT", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Error("error closing database", "error", err)
		}
	}
}

// withApp runs fn against a freshly set up app and closes it afterwards.
func withApp(opts *rootOptions, fn func(a *app) error) error {
	a, err := setup(getConfigPath(opts.configPath))
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// connect opens the database, mostly so commands fail early with a clear error.
func (a *app) connect(ctx context.Context) (*database.DB, error) {
	db, err := a.db.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
