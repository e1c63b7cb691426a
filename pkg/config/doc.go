// Package config loads typed configuration structs from environment
// variables, with one parse per struct type for the process lifetime.
//
// It layers caching on top of github.com/caarlos0/env for parsing and
// github.com/joho/godotenv for a best-effort .env file load. Every package in
// this module declares its own Config struct with env tags; this loader is
// how they all get populated:
//
//	var cfg session.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// MustLoad panics instead of returning the error, for configuration the
// process cannot start without.
package config
