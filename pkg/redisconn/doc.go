// Package redisconn connects to the Redis server backing a shared spend
// ledger, with environment-driven configuration and bounded connection
// retries.
package redisconn
