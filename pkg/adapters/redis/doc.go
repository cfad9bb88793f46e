// Package redis provides a Redis-backed response cache shared across processes.
package redis
