package adapter

import (
	"fmt"

	"TourneySync/internal/interfaces"
	"TourneySync/internal/model"

	"github.com/sirupsen/logrus"
)

// SourceRegistry live adapters for the sources enabled in config
type SourceRegistry struct {
	logger   *logrus.Logger
	adapters map[model.ScrapeSource]interfaces.SourceAdapter
}

// NewSourceRegistry instantiates one adapter per enabled source. Unknown or
// unregistered names are logged and ignored so one typo does not stop the job.
func NewSourceRegistry(enabled []string, deps Deps, logger *logrus.Logger) *SourceRegistry {
	r := &SourceRegistry{
		logger:   logger,
		adapters: make(map[model.ScrapeSource]interfaces.SourceAdapter),
	}
	if deps.Logger == nil {
		deps.Logger = logger
	}

	logger.WithField("registered", ListFactories()).Debug("source factories available")
	for _, name := range enabled {
		source, ok := model.ParseScrapeSource(name)
		if !ok || source == model.SourceManual {
			logger.WithField("source", name).Warn("ignoring unknown source in sync.enabled_sources")
			continue
		}
		factory, ok := GetFactory(source)
		if !ok {
			logger.WithField("source", source).Error("no factory registered (missing import?)")
			continue
		}
		a := factory(deps)
		if a == nil || a.Source() != source {
			logger.WithField("source", source).Error("factory returned a mismatched adapter")
			continue
		}
		r.adapters[source] = a
	}
	logger.WithField("sources", r.Sources()).Info("source adapters ready")
	return r
}

// Get adapter for a venue's scrape_source
func (r *SourceRegistry) Get(source model.ScrapeSource) (interfaces.SourceAdapter, error) {
	a, ok := r.adapters[source]
	if !ok {
		return nil, fmt.Errorf("no adapter enabled for source %q", source)
	}
	return a, nil
}

// Sources enabled sources, sorted
func (r *SourceRegistry) Sources() []model.ScrapeSource {
	var out []model.ScrapeSource
	for _, s := range ListFactories() {
		if _, ok := r.adapters[s]; ok {
			out = append(out, s)
		}
	}
	return out
}
