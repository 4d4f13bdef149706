// Package config defines the sessionlink client configuration.
//
//   - spec.go: Config struct and defaults (~/.sessionlink/config.yaml)
//   - loader.go: layered loading, validation and saving
package config
