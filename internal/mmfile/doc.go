// Package mmfile provides platform-specific helpers for memory-mapping
// compiled dictionaries and their offset-index caches.
package mmfile
