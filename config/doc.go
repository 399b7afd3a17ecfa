// Package config loads dbprime configuration from files and the environment.
//
// It uses Viper to read a YAML file (dbprime.yml or config.yml, searched in
// the working directory, testdata/ and parent directories), loads an optional
// .env file with godotenv, and binds DBPRIME_* environment variables onto
// nested keys:
//
//	DBPRIME_DRIVER=postgres            -> driver
//	DBPRIME_CONNECTION_HOST=localhost  -> connection.host
//
// Validate checks structs tagged with go-playground/validator rules.
package config
