// Package config handles loading and validating OpenCrate configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables (OPENCRATE_DB_HOST, ...)
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - Database passwords and broker/InfluxDB credentials should be set via
//     environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	db := database.NewHandle(cfg.Database.Connection())
package config
