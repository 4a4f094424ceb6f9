package search

import (
	"log/slog"

	"github.com/nao1215/wikid/internal/model"
)

// Observer receives events as the search progresses.
// Methods are called from the goroutine running Engine.Run.
type Observer interface {
	// OnExpand is called after id was marked visited and before it is fetched.
	OnExpand(step int, id model.DocumentID)

	// OnEdge is called for every edge recorded in the graph.
	OnEdge(edge model.Edge)

	// OnSelect is called when the frontier picks the next document.
	OnSelect(id model.DocumentID, weight float64)
}

// nopObserver ignores every event.
type nopObserver struct{}

func (nopObserver) OnExpand(int, model.DocumentID)     {}
func (nopObserver) OnEdge(model.Edge)                  {}
func (nopObserver) OnSelect(model.DocumentID, float64) {}

// LogObserver writes search events to a structured logger.
// Expansions are logged at Info, edges and frontier picks at Debug.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates a LogObserver.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

// OnExpand implements Observer.
func (o *LogObserver) OnExpand(step int, id model.DocumentID) {
	o.logger.Info("expanding", "step", step, "document", id.Label(), "url", id)
}

// OnEdge implements Observer.
func (o *LogObserver) OnEdge(edge model.Edge) {
	o.logger.Debug("edge added", "from", edge.From.Label(), "to", edge.To.Label(), "weight", edge.Weight)
}

// OnSelect implements Observer.
func (o *LogObserver) OnSelect(id model.DocumentID, weight float64) {
	o.logger.Debug("frontier selected", "document", id.Label(), "weight", weight)
}
