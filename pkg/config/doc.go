// Package config loads typed configuration structs from the
// environment, with optional .env files and per-type caching.
//
// Every component in this module declares its own Config struct with
// env tags (resolution.Config, pg.Config, redis.Config, logger.Config,
// superadmin.Config); this package is the single place they all get
// parsed:
//
//	var cfg resolution.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// A type is parsed once per process and cached, so the same Config
// requested from two places cannot disagree. Tests that mutate the
// environment call ResetCache between loads.
package config
