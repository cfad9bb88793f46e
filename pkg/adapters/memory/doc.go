// Package memory provides an in-process response cache.
package memory
