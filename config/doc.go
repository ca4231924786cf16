// Package config provides configuration loading and validation for kvfront.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (KVFRONT_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with KVFRONT_ prefix:
//   - server.port → KVFRONT_SERVER_PORT
//   - backend.type → KVFRONT_BACKEND_TYPE
//   - registry.strategy → KVFRONT_REGISTRY_STRATEGY
//
// # Configuration Structure
//
// The Config struct contains:
//   - Env: dev (coloured logs) or prod (JSON logs)
//   - Server: port, listing source, timeouts and max_body_size
//   - Backend: type, DSN, table name, seed file and auto_migrate
//   - Registry: index strategy and the index entry names
//   - Token: whether every request's token is recorded
//   - CORS: cross-origin resource sharing settings
//   - Log: logging level
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - Listing must be native or indexed
//   - Backend type must be sqlite, postgres, bolt, memory or filesystem
//   - Strategy must be best_effort or atomic, and the two index keys must differ
//   - Log level must be debug, info, warn, or error
package config
