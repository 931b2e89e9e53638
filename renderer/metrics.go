package renderer

import (
	"context"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
)

var (
	pixelSamples = stats.Int64("checkertrace/renderer/pixel_samples", "Samples traced for one pixel", stats.UnitDimensionless)

	pixelCountView = &view.View{
		Name:        "checkertrace/renderer/pixels",
		Description: "Counter of pixels that have been traced",
		Measure:     pixelSamples,
		Aggregation: view.Count(),
	}

	pixelSamplesView = &view.View{
		Name:        "checkertrace/renderer/pixel_samples",
		Description: "Distribution of samples needed per pixel",
		Measure:     pixelSamples,
		Aggregation: view.Distribution(1, 2, 3, 4, 6, 8, 12, 16, 32),
	}
)

// RegisterMetrics registers the renderer's opencensus views.
func RegisterMetrics() error {
	return view.Register(pixelCountView, pixelSamplesView)
}

func recordPixel(ctx context.Context, samples int) {
	stats.Record(ctx, pixelSamples.M(int64(samples)))
}
