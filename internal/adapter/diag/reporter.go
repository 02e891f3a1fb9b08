package diag

import (
	"errors"
	"sync"
)

// ErrorReporter is responsible for reporting the given error. A non-nil
// return aborts the whole run with that error; nil lets the run continue
// with the remaining files.
type ErrorReporter func(err ErrorWithPos) error

type Reporter interface {
	Error(ErrorWithPos) error
}

func NewReporter(errs ErrorReporter) Reporter {
	return reporterFunc{errs: errs}
}

type reporterFunc struct {
	errs ErrorReporter
}

func (r reporterFunc) Error(err ErrorWithPos) error {
	if r.errs == nil {
		return err
	}
	return r.errs(err)
}

// Handler funnels the diagnostics of concurrent expansions into one
// Reporter and remembers whether any were reported.
type Handler struct {
	reporter Reporter

	mu           sync.Mutex
	errsReported bool
	err          error
}

func NewHandler(rep Reporter) *Handler {
	if rep == nil {
		rep = NewReporter(nil)
	}
	return &Handler{reporter: rep}
}

// HandleError reports err. Errors that carry no position are returned
// unchanged and do not go through the reporter.
func (h *Handler) HandleError(err error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.err != nil {
		return h.err
	}
	var ewp ErrorWithPos
	if !errors.As(err, &ewp) {
		return err
	}
	h.errsReported = true
	h.err = h.reporter.Error(ewp)
	return h.err
}

// Error returns the aborting error, or ErrInvalidSource when diagnostics
// were reported but the reporter let the run continue.
func (h *Handler) Error() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.errsReported && h.err == nil {
		return ErrInvalidSource
	}
	return h.err
}

// ReportedErrors reports whether any diagnostic went through the handler.
func (h *Handler) ReportedErrors() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.errsReported
}
