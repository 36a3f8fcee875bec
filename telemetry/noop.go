package telemetry

import (
	"io"

	"github.com/HandmadeMath/HandmadeMath-sub000/output"
)

// noOpCollector is used when no collector is in the context.
type noOpCollector struct{}

func (noOpCollector) Start(name string) Timer                   { return noOpTimer{} }
func (noOpCollector) Count(name string, n int)                  {}
func (noOpCollector) Report(w io.Writer, styles *output.Styles) {}

type noOpTimer struct{}

func (noOpTimer) End()                    {}
func (noOpTimer) Child(name string) Timer { return noOpTimer{} }
