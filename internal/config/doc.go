// Package config defines configuration for the sigfetch CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (SIGFETCH_ prefix; the credential comes from
//     SIGNATURIT_API_TOKEN)
//   - YAML configuration file
//
// Later sources override earlier ones: defaults, then the file, then the
// environment, then flags.
package config
