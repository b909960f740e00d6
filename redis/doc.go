// Package redis is the networked cache store behind apiclient's
// cache-aside helper. Client wraps go-redis and implements apiclient.Store:
// Get reports a missing key as an empty string and SetEx writes a value
// with an expiry.
//
//	store, err := redis.New(redis.Config{Enabled: true, Addr: "localhost:6379"}, log)
//	client, err := apiclient.New(cfg, apiclient.WithCache(store))
package redis
