package mediatype

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"sift/internal/config"
)

// Kind is the top-level destination directory for an item.
type Kind string

const (
	Movie  Kind = "movies"
	Series Kind = "tv"
)

// Strategy names accepted by classification.media_type_strategy.
const (
	StrategyFolder = "folder"
	StrategySxE    = "sxe"
	StrategyGuess  = "guess"
)

// Classifier decides whether an item is a movie or a series episode.
type Classifier struct {
	strategy      string
	sxe           *regexp.Regexp
	seasonEpisode *regexp.Regexp
	folders       map[string]Kind
}

// NewClassifier builds a classifier from validated classification settings.
func NewClassifier(cls config.Classification) *Classifier {
	c := &Classifier{
		strategy: strings.ToLower(cls.MediaTypeStrategy),
		sxe:      compileOrNil(cls.TVSxERegex),
		folders:  folderKinds(cls.MovieFolders, cls.SeriesFolders),
	}
	if cls.EnableSeasonEpisodeWords {
		c.seasonEpisode = compileOrNil(cls.TVSeasonEpisodeRegex)
	}
	return c
}

// Classify returns the media type for an incoming-relative path. It never
// fails; anything it cannot decide is a movie. Series folder aliases are
// checked before movie aliases.
func (c *Classifier) Classify(relPath string) Kind {
	relPath = filepath.ToSlash(strings.TrimSpace(relPath))
	if relPath == "" {
		return Movie
	}
	switch c.strategy {
	case StrategyFolder:
		head, _, _ := strings.Cut(strings.TrimPrefix(relPath, "/"), "/")
		head = strings.ToLower(head)
		if kind, ok := c.folders[head]; ok {
			return kind
		}
		return Movie
	case StrategySxE:
		name := path.Base(relPath)
		if c.sxe != nil && c.sxe.MatchString(name) {
			return Series
		}
		if c.seasonEpisode != nil && c.seasonEpisode.MatchString(name) {
			return Series
		}
		return Movie
	default:
		// guess is reserved.
		return Movie
	}
}

func compileOrNil(expr string) *regexp.Regexp {
	if expr == "" {
		return nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil
	}
	return re
}

// folderKinds maps lower-cased folder aliases to their kind. An alias listed
// under both wins as a series.
func folderKinds(movies, series []string) map[string]Kind {
	kinds := make(map[string]Kind, len(movies)+len(series))
	for _, v := range movies {
		kinds[strings.ToLower(v)] = Movie
	}
	for _, v := range series {
		kinds[strings.ToLower(v)] = Series
	}
	return kinds
}
