// Package config loads and watches the service configuration file (config.yaml).
//
// Top-level types:
//   - Config{Server, Remote}: full config tree parsed from YAML
//   - ServerConfig: http_port, log_level, shutdown_timeout
//   - RemoteConfig: base_url of the messages/reports source, timeout,
//     report_concurrency (admission permits), rate_limit/rate_burst, auth, tls
//   - AuthConfig: mode (none|apikey|bearer|basic|mtls); secrets are referenced
//     by environment variable name and resolved by Key(), Token(), Password()
//
// Load(path) reads .env files (godotenv, never overriding the environment),
// applies defaults, parses YAML, applies CREDITMETER_* overrides and validates.
// Defaults() is the configuration used when no file exists.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with the newly parsed Config. Invalid reloads are logged and skipped.
package config
