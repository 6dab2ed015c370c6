// Package config provides configuration loading for collegia-core.
//
// Configuration is YAML with ${VAR_NAME} environment variable expansion:
//
//	database:
//	  path: ${HOME}/.local/share/collegia/collegia.db
//	logging:
//	  level: info   # debug, info, warn, error
//	  format: text  # text or json
//
// Default() supplies a working configuration when no file is present, with
// the database under the user's local data directory.
package config
