// Package config loads service configuration from a YAML file, a .env file
// and the environment, in that order of precedence (later wins).
//
// # Usage
//
//	var cfg AppConfig
//	err := config.LoadConfig("apiclient", &cfg)
//
// Environment variables are matched after stripping the service prefix, so
// APICLIENT_CLIENT_DOMAIN sets client.domain and APICLIENT_REDIS_KEY_PREFIX
// sets redis.key_prefix. A cfg that implements Defaulter has ApplyDefaults
// and Validate called after unmarshalling.
package config
