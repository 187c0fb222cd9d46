// Package broadcast provides an in-memory fan-out registry.
//
// Each subscriber gets its own buffered channel. Publish never blocks: a
// subscriber whose buffer is full misses the value. Subscribers joining
// after a Publish do not receive it.
package broadcast
