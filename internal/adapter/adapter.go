package adapter

import (
	"fmt"
	"sort"

	"TourneySync/internal/interfaces"
	"TourneySync/internal/model"

	"github.com/sirupsen/logrus"
)

// Deps shared collaborators handed to every source factory
type Deps struct {
	HTTP    interfaces.Fetcher // plain HTTP, used by static sources
	Browser interfaces.Fetcher // headless, used by JavaScript-rendered sources
	Logger  *logrus.Logger
}

// Factory builds a source adapter; registered from each source package's init
type Factory func(deps Deps) interfaces.SourceAdapter

var factoryRegistry = make(map[model.ScrapeSource]Factory)

// Register called from init; a second registration for the same source replaces the first
func Register(source model.ScrapeSource, factory Factory) {
	if factory == nil {
		panic(fmt.Sprintf("nil factory for source %s", source))
	}
	if _, exists := factoryRegistry[source]; exists {
		logrus.Warnf("source %s already registered, replacing", source)
	}
	factoryRegistry[source] = factory
}

func GetFactory(source model.ScrapeSource) (Factory, bool) {
	factory, ok := factoryRegistry[source]
	return factory, ok
}

// ListFactories registered sources, sorted
func ListFactories() []model.ScrapeSource {
	sources := make([]model.ScrapeSource, 0, len(factoryRegistry))
	for s := range factoryRegistry {
		sources = append(sources, s)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })
	return sources
}
