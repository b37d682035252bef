package core

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/promptdeck/promptdeck/pkg/metrics"
)

type Metrics struct {
	apiResponseTime    *prometheus.HistogramVec
	apiErrorCounter    *prometheus.CounterVec
	completionTime     *prometheus.HistogramVec
	completionError    *prometheus.CounterVec
	pipelineStepError  *prometheus.CounterVec
	autoResetTriggered *prometheus.CounterVec
}

func NewMetrics(ns, system string) *Metrics {
	metrics.SetupMetricsManager(ns, system, prometheus.DefaultRegisterer.(*prometheus.Registry))

	m := &Metrics{
		apiResponseTime:    metrics.NewHistogramVec("api_response_time", []string{"api"}),
		apiErrorCounter:    metrics.NewCounterVec("api_error", []string{"method", "api", "status"}),
		completionTime:     metrics.NewHistogramVec("completion_time", []string{"model"}),
		completionError:    metrics.NewCounterVec("completion_error", []string{"type"}),
		pipelineStepError:  metrics.NewCounterVec("pipeline_step_error", []string{"step"}),
		autoResetTriggered: metrics.NewCounterVec("auto_reset_triggered", nil),
	}

	return m
}

func (m *Metrics) ApiResponseTimer(api string) *prometheus.Timer {
	return prometheus.NewTimer(m.apiResponseTime.WithLabelValues(api))
}

func (m *Metrics) ApiErrorInc(method, api string, status int) {
	m.apiErrorCounter.WithLabelValues(method, api, strconv.Itoa(status)).Inc()
}

func (m *Metrics) CompletionTimer(model string) *prometheus.Timer {
	return prometheus.NewTimer(m.completionTime.WithLabelValues(model))
}

func (m *Metrics) CompletionErrorInc(kind string) {
	m.completionError.WithLabelValues(kind).Inc()
}

func (m *Metrics) PipelineStepErrorInc(step string) {
	m.pipelineStepError.WithLabelValues(step).Inc()
}

func (m *Metrics) AutoResetInc() {
	m.autoResetTriggered.WithLabelValues().Inc()
}
