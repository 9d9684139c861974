// Package config loads the hfcand command-line configuration.
//
// Values come, in increasing priority, from built-in defaults, a YAML file
// and HFCAND_* environment variables (dots become underscores, so
// fitter.max_r is HFCAND_FITTER_MAX_R). Flags bound to the Viper instance
// returned by NewViper override everything.
package config
