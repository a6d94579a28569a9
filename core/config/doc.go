// Package config provides configuration management for the judge sync engine.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Default values live next to the fields they configure, in
// `default:"..."` struct tags, and are registered with Viper by reflection so that
// every key is also reachable through AutomaticEnv.
//
// # Configuration Structure
//
//   - Registry: remote registry base URL, API token, timeout and page delay
//   - Sync: batch size, concurrency, retries, delays, staleness and discovery limits
//   - Database: MySQL (or SQLite) connection details
//   - Storage: S3/MinIO settings for the raw payload archive
//   - Redis: optional shared freshness cache
//   - Log: logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Sync.BatchSize)
package config
