// Package config loads the applock YAML configuration file.
//
// Values of the form ${VAR} are replaced with environment variables before
// parsing. Durations are written as Go duration strings ("5m", "90s").
// Fields absent from the file keep their defaults.
package config
