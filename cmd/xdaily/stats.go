package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/omeyang/xdaily/pkg/observability/xmetrics"
)

// stats 进程内收集 xrotate 的操作计数，退出时汇总打印
type stats struct {
	reader   *sdkmetric.ManualReader
	provider *sdkmetric.MeterProvider
}

func newStats() *stats {
	reader := sdkmetric.NewManualReader()
	return &stats{
		reader:   reader,
		provider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
	}
}

func (s *stats) observer() (xmetrics.Observer, error) {
	return xmetrics.NewOTelObserver(xmetrics.WithMeterProvider(s.provider))
}

// counts 按 "operation/status" 汇总操作次数
func (s *stats) counts(ctx context.Context) (map[string]int64, error) {
	var rm metricdata.ResourceMetrics
	if err := s.reader.Collect(ctx, &rm); err != nil {
		return nil, err
	}
	out := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != xmetrics.MetricOperationTotal {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				op, _ := dp.Attributes.Value(attribute.Key("operation"))
				status, _ := dp.Attributes.Value(attribute.Key("status"))
				out[op.AsString()+"/"+status.AsString()] += dp.Value
			}
		}
	}
	return out, nil
}

// report 打印汇总并关闭 provider
func (s *stats) report(ctx context.Context, w io.Writer, lines int64) error {
	counts, err := s.counts(ctx)
	if err != nil {
		return errors.Join(err, s.provider.Shutdown(ctx))
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	_, err = fmt.Fprintf(w, "lines=%d", lines)
	for _, k := range keys {
		if err == nil {
			_, err = fmt.Fprintf(w, " %s=%d", k, counts[k])
		}
	}
	if err == nil {
		_, err = fmt.Fprintln(w)
	}
	return errors.Join(err, s.provider.Shutdown(ctx))
}
