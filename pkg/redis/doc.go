// Package redis connects to the Redis instance backing session.RedisStore.
// It mirrors pkg/pg: env-driven Config, Connect with startup retry, and a
// healthcheck closure for readiness probes.
package redis
