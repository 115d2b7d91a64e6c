package metrics

import "time"

type NoopCollector struct{}

var _ Collector = NoopCollector{}

func NewNoopCollector() NoopCollector { return NoopCollector{} }

func (NoopCollector) ExchangeCompleted(string, time.Duration, bool) {}
func (NoopCollector) ResultInterpreted(string)                      {}
func (NoopCollector) BatchApplied(string)                           {}
