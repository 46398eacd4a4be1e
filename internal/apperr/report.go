package apperr

import "github.com/lee-lou2/aws-ses-sender/internal/pkg/logger"

// Sink receives non-surfaceable errors for centralized reporting. The
// default sink logs at ERROR level; production deployments can swap in
// an implementation that forwards to an external error tracker without
// touching call sites.
type Sink interface {
	Report(component string, err error)
}

// logSink is the default Sink: structured JSON logging only. No
// external APM client is wired in (see DESIGN.md); production
// deployments can call SetSink to forward elsewhere.
type logSink struct{}

func (logSink) Report(component string, err error) {
	if err == nil {
		return
	}
	logger.Error("unhandled error", "component", component, "kind", KindOf(err).String(), "error", err.Error())
}

var defaultSink Sink = logSink{}

// SetSink overrides the default error-reporting sink.
func SetSink(s Sink) {
	if s != nil {
		defaultSink = s
	}
}

// Report sends err to the configured sink. Safe to call with a nil err.
func Report(component string, err error) {
	if err == nil {
		return
	}
	defaultSink.Report(component, err)
}
