// Package mediatype classifies incoming files as movies or series episodes
// using the configured folder, SxE, or guess strategy.
package mediatype
