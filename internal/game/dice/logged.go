package dice

import "go.uber.org/zap"

// LoggedSource wraps a Source and logs every draw at debug level.
type LoggedSource struct {
	src    Source
	logger *zap.Logger
	count  uint64
}

// NewLoggedSource creates a LoggedSource drawing from src.
//
// Precondition: src and logger must be non-nil.
func NewLoggedSource(src Source, logger *zap.Logger) *LoggedSource {
	return &LoggedSource{src: src, logger: logger}
}

// Intn draws from the wrapped source and logs the bound, result and draw index.
//
// Precondition: n > 0.
// Postcondition: Returns exactly what the wrapped source returned.
func (l *LoggedSource) Intn(n int) int {
	v := l.src.Intn(n)
	l.count++
	l.logger.Debug("rng draw",
		zap.Uint64("draw", l.count),
		zap.Int("bound", n),
		zap.Int("value", v),
	)
	return v
}
