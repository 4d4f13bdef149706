// Package confloader loads layered configuration with koanf.
//
// Priority (highest to lowest):
//
//  1. Command-line flags (LoadMap)
//  2. Environment variables (SESSIONLINK_*, "__" separates nesting levels)
//  3. Configuration file (YAML)
//  4. Values already present in the target struct
package confloader
