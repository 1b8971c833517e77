// Package cache stores generated artifacts (audio summaries, art and
// infographics) so that asking twice for the same thing does not call the
// model twice. It has an in-memory LRU level and a persistent, zstd
// compressed disk level with TTL pruning.
package cache
