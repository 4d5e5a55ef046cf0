// Package config loads, normalizes, and validates pbrlib configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads a working-directory .env, and honours
// environment fallbacks such as PBRLIB_DATA_DIR and MIXCLOUD_PROFILE. The
// Config type centralizes every directory, enrichment, and catalog knob the
// import pipeline and CLI need.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
