// Package output renders command results.
//
//   - formatter.go: Formatter interface and factory
//   - json.go: indented JSON
//   - yaml.go: YAML
//   - text.go: aligned KEY/VALUE columns for people
package output
