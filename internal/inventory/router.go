package inventory

import (
	"log/slog"

	"sift/internal/config"
	"sift/internal/facts"
	"sift/internal/mediatype"
	"sift/internal/tiers"
)

// Route is where an item belongs.
type Route struct {
	MediaType mediatype.Kind
	Tier      tiers.Def
	Facts     facts.Facts
}

// Router combines fact derivation, media type classification, and tier
// matching.
type Router struct {
	deriver    *facts.Deriver
	classifier *mediatype.Classifier
	tiers      tiers.Table
}

// NewRouter builds a router from a finalized config.
func NewRouter(cfg *config.Config, logger *slog.Logger) *Router {
	return &Router{
		deriver:    facts.NewDeriver(cfg.Classification, logger),
		classifier: mediatype.NewClassifier(cfg.Classification),
		tiers:      cfg.Tiers(),
	}
}

// Route derives facts for item and selects its media type and tier.
func (r *Router) Route(item Item) Route {
	f := r.deriver.Derive(&item.FFprobe)
	return Route{
		MediaType: r.classifier.Classify(item.RelPath),
		Tier:      r.tiers.Select(f),
		Facts:     f,
	}
}
