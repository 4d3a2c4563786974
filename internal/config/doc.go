// Package config provides configuration management for the Beacon API.
//
// Configuration is loaded from environment variables with sensible defaults
// for development. A .env file is honored when present (loaded in main).
//
// # Configuration Sections
//
//   - Server: HTTP port, environment, timeouts
//   - Database: SurrealDB connection settings
//   - Pipeline: job concurrency, batch size, backoff and spacing knobs
//   - Delivery: alert transport selection
//   - Auth: OAuth handshake state TTL
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
