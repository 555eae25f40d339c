// Package augment appends synthetic summary metrics for Lambda functions
// found in a metric stream. The original metrics are never modified; every
// matched function gains one placeholder summary metric per instrumentation
// scope carrying a set of custom attributes.
package augment

import (
	"time"

	"go.opentelemetry.io/collector/pdata/pcommon"
	"go.opentelemetry.io/collector/pdata/pmetric"
)

const (
	// summaryMetricName mimics the naming of the standard AWS Lambda
	// metrics delivered by CloudWatch metric streams.
	summaryMetricName = "amazonaws.com/AWS/Lambda/Custom"
	summaryMetricUnit = "{Count}"

	namespaceKey   = "Namespace"
	namespaceValue = "AWS/Lambda"

	metricNameKey   = "MetricName"
	metricNameValue = "Custom"
)

// Attribute is one custom key/value pair stamped onto every synthetic metric.
type Attribute struct {
	Key   string
	Value string
}

// Rule describes which data points to match and what to stamp onto the
// synthetic metrics built for them. A Rule is immutable once built.
type Rule struct {
	// FunctionKey is the data point attribute identifying a function,
	// e.g. "FunctionName" for CloudWatch metric streams.
	FunctionKey string

	// Targets is the set of function values to annotate.
	Targets map[string]struct{}

	// Attributes are appended, in order, after the fixed namespace,
	// metric name and function attributes.
	Attributes []Attribute
}

// NewRule builds a Rule from a target list, dropping duplicates.
func NewRule(functionKey string, targets []string, attrs []Attribute) Rule {
	set := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		set[t] = struct{}{}
	}
	return Rule{FunctionKey: functionKey, Targets: set, Attributes: attrs}
}

// Annotate scans md for data points whose function attribute matches the
// rule and appends one synthetic summary metric per matched function value
// per instrumentation scope. Matching is first-seen-wins within a scope, so
// a function appearing in many data points yields exactly one new metric.
// The scan covers only metrics present on entry; metrics appended here are
// not rescanned. Returns the number of metrics appended.
func Annotate(md pmetric.Metrics, rule Rule, now time.Time) int {
	appended := 0
	rms := md.ResourceMetrics()
	for i := 0; i < rms.Len(); i++ {
		sms := rms.At(i).ScopeMetrics()
		for j := 0; j < sms.Len(); j++ {
			sm := sms.At(j)
			for _, function := range matchedFunctions(sm, rule) {
				appendSummaryMetric(sm, rule, function, now)
				appended++
			}
		}
	}
	return appended
}

// matchedFunctions returns the distinct matched function values of one
// scope, ordered by first occurrence. Reads only; appending happens after
// the full scan of the scope.
func matchedFunctions(sm pmetric.ScopeMetrics, rule Rule) []string {
	var matched []string
	produced := make(map[string]struct{})
	metrics := sm.Metrics()
	for i := 0; i < metrics.Len(); i++ {
		eachDataPointAttributes(metrics.At(i), func(attrs pcommon.Map) {
			attrs.Range(func(key string, value pcommon.Value) bool {
				if key != rule.FunctionKey {
					return true
				}
				function := value.Str()
				if _, ok := rule.Targets[function]; !ok {
					return true
				}
				if _, ok := produced[function]; ok {
					return true
				}
				produced[function] = struct{}{}
				matched = append(matched, function)
				return true
			})
		})
	}
	return matched
}

// eachDataPointAttributes calls f with the attributes of every data point of
// m. The switch is exhaustive over the metric type union; a metric with no
// populated variant has no data points and is skipped.
func eachDataPointAttributes(m pmetric.Metric, f func(pcommon.Map)) {
	switch m.Type() {
	case pmetric.MetricTypeGauge:
		dps := m.Gauge().DataPoints()
		for i := 0; i < dps.Len(); i++ {
			f(dps.At(i).Attributes())
		}
	case pmetric.MetricTypeSum:
		dps := m.Sum().DataPoints()
		for i := 0; i < dps.Len(); i++ {
			f(dps.At(i).Attributes())
		}
	case pmetric.MetricTypeHistogram:
		dps := m.Histogram().DataPoints()
		for i := 0; i < dps.Len(); i++ {
			f(dps.At(i).Attributes())
		}
	case pmetric.MetricTypeExponentialHistogram:
		dps := m.ExponentialHistogram().DataPoints()
		for i := 0; i < dps.Len(); i++ {
			f(dps.At(i).Attributes())
		}
	case pmetric.MetricTypeSummary:
		dps := m.Summary().DataPoints()
		for i := 0; i < dps.Len(); i++ {
			f(dps.At(i).Attributes())
		}
	case pmetric.MetricTypeEmpty:
	}
}

// appendSummaryMetric appends the synthetic summary metric for one matched
// function. The numeric fields are fixed placeholders, not statistics: the
// metric exists to carry the attributes.
func appendSummaryMetric(sm pmetric.ScopeMetrics, rule Rule, function string, now time.Time) {
	m := sm.Metrics().AppendEmpty()
	m.SetName(summaryMetricName)
	m.SetUnit(summaryMetricUnit)

	dp := m.SetEmptySummary().DataPoints().AppendEmpty()

	// Whole-second timestamps match the granularity of the standard AWS
	// metrics in the stream.
	ts := pcommon.NewTimestampFromTime(now.Truncate(time.Second))
	dp.SetStartTimestamp(ts)
	dp.SetTimestamp(ts)
	dp.SetCount(1)
	dp.SetSum(1.0)

	qmin := dp.QuantileValues().AppendEmpty()
	qmin.SetQuantile(0.0)
	qmin.SetValue(1.0)
	qmax := dp.QuantileValues().AppendEmpty()
	qmax.SetQuantile(1.0)
	qmax.SetValue(1.0)

	attrs := dp.Attributes()
	attrs.EnsureCapacity(3 + len(rule.Attributes))
	attrs.PutStr(namespaceKey, namespaceValue)
	attrs.PutStr(metricNameKey, metricNameValue)
	attrs.PutStr(rule.FunctionKey, function)
	for _, attr := range rule.Attributes {
		attrs.PutStr(attr.Key, attr.Value)
	}
}
