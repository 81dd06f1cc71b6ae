// Package config loads, normalizes, and validates sift configuration data.
//
// Default supplies repository defaults and Load overlays a TOML file on top of
// them, expands user paths (tilde and environment variables), checks every
// section with ozzo-validation, and parses the tier model into a tiers.Table.
// Tier rules are parsed eagerly so a malformed rule fails at load instead of
// silently never matching.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, lower-cased lookup keys, and a resolved fallback tier.
package config
