// Package config provides the configuration for wikibridge: where the
// counterpart lives and how to reach it, how source pages are classified,
// where the bridge listens and where state is stored.
//
// Values are layered in this order, later layers winning: built-in defaults
// (NewConfig), the YAML file (.wikibridge), the environment (including a
// .env file) and finally command-line flags.
package config
