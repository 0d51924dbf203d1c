// Package config loads service configuration with Viper.
//
// Sources, lowest precedence first: a YAML config file, a .env file
// (loaded into the process environment by godotenv) and the process
// environment itself. Environment variables map onto nested keys by
// underscores, so COSMOSDB_DATABASE_ID sets cosmosdb.database_id.
//
// # Usage
//
//	var cfg config.AppConfig
//	if err := config.LoadConfig("orders-api", &cfg); err != nil {
//	    return err
//	}
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config
