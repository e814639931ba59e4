// Package config defines pipeline settings used by the bundler, release
// generator and offline checker, and provides helpers to load, validate and
// save them in YAML format.
//
// All values have working defaults so every binary can run with no arguments;
// a settings file only needs to exist when a value deviates from the stock
// layout (custom source checkout, alternate gateway port, and so on).
package config
