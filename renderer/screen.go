package renderer

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"checkertrace/camera"
	"checkertrace/contact"
	"checkertrace/ray"
	"checkertrace/scene"
	"checkertrace/vmath/vec3"

	"github.com/golang/glog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	DefaultMaxDepth = 5
	DefaultSamples  = 16
)

// Sink receives one color per pixel, with every component in [0, 1].  Row 0
// is the bottom of the screen.
type Sink interface {
	SetPixel(col, row int, c vec3.T)
}

type Options struct {
	// MaxDepth is the number of reflection and transmission bounces
	// followed from each primary ray.
	MaxDepth int

	// Samples is the most jittered rays traced for any one pixel.
	Samples int

	// Seed seeds the jitter.  Renders with the same seed are identical.
	Seed int64

	// Progress, if non-nil, is updated as rows complete.
	Progress *Progress

	// ProgressLogInterval is the minimum time between progress log lines.
	// Zero disables progress logging.
	ProgressLogInterval time.Duration
}

func DefaultOptions() Options {
	return Options{
		MaxDepth:            DefaultMaxDepth,
		Samples:             DefaultSamples,
		Seed:                1,
		ProgressLogInterval: 10 * time.Second,
	}
}

// Stats summarizes how much work a render took.
type Stats struct {
	Pixels  int
	Samples int64

	MinSamples int
	MaxSamples int

	// EarlyExits counts pixels that converged before using every sample.
	EarlyExits int

	Elapsed time.Duration
}

func (s *Stats) add(samples, limit int) {
	if s.Pixels == 0 || samples < s.MinSamples {
		s.MinSamples = samples
	}
	if samples > s.MaxSamples {
		s.MaxSamples = samples
	}
	if samples < limit {
		s.EarlyExits++
	}
	s.Pixels++
	s.Samples += int64(samples)
}

// MeanSamples is the average number of samples per pixel.
func (s Stats) MeanSamples() float64 {
	if s.Pixels == 0 {
		return 0
	}
	return float64(s.Samples) / float64(s.Pixels)
}

// TraceScreen renders every pixel of view into sink.  It stops between pixels
// if ctx is cancelled, returning the statistics gathered so far.
func TraceScreen(ctx context.Context, s *scene.Scene, view *camera.View, sink Sink, opts Options) (Stats, error) {
	tracer := otel.Tracer("checkertrace/renderer")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "TraceScreen", trace.WithAttributes(
		attribute.Int64("width", int64(view.Width)),
		attribute.Int64("height", int64(view.Height)),
		attribute.Int64("samples", int64(opts.Samples)),
		attribute.Int64("depth", int64(opts.MaxDepth)),
	))
	defer span.End()

	stats := Stats{}
	start := time.Now()

	if opts.Samples < 1 {
		err := fmt.Errorf("need at least one sample per pixel, got %d", opts.Samples)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return stats, err
	}

	smp := &sampler{
		trace: func(r ray.Ray) vec3.T {
			return TraceRay(s, r, opts.MaxDepth)
		},
		rng:        rand.New(rand.NewSource(opts.Seed)),
		maxSamples: opts.Samples,
	}

	opts.Progress.begin(view.Height, view.Width*view.Height)

	var logLimiter *rate.Limiter
	if opts.ProgressLogInterval > 0 {
		logLimiter = rate.NewLimiter(rate.Every(opts.ProgressLogInterval), 1)
	}

	for row := 0; row < view.Height; row++ {
		rowSamples := int64(0)
		for col := 0; col < view.Width; col++ {
			if err := ctx.Err(); err != nil {
				stats.Elapsed = time.Since(start)
				err = fmt.Errorf("while tracing pixel (%d, %d): %w", col, row, err)
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				opts.Progress.finish(err)
				return stats, err
			}

			color, n := smp.pixel(view, col, row)
			sink.SetPixel(col, row, Clamp(color))
			stats.add(n, opts.Samples)
			rowSamples += int64(n)
			recordPixel(ctx, n)
		}

		opts.Progress.rowDone(view.Width, rowSamples)
		if logLimiter != nil && logLimiter.Allow() {
			glog.Infof("Traced %d/%d rows (%d pixels, %.2f samples/pixel)", row+1, view.Height, stats.Pixels, stats.MeanSamples())
		}
	}

	stats.Elapsed = time.Since(start)
	opts.Progress.finish(nil)

	span.SetAttributes(
		attribute.Int64("pixels", int64(stats.Pixels)),
		attribute.Int64("total_samples", stats.Samples),
		attribute.Int64("early_exits", int64(stats.EarlyExits)),
	)
	span.SetStatus(codes.Ok, "")
	return stats, nil
}

// Clamp limits each component of c to [0, 1].  NaN components become 0.
func Clamp(c vec3.T) vec3.T {
	out := vec3.T{}
	for i, v := range c {
		switch {
		case math.IsNaN(v) || v <= 0:
			out[i] = 0
		case v >= 1:
			out[i] = 1
		default:
			out[i] = v
		}
	}
	return out
}

// sampler averages jittered rays through a pixel until the running average
// settles.
//
// The stopping rule is a heuristic: it stops as soon as one more sample moves
// the average by less than contact.SmallNumber.  It says nothing about the
// variance of the pixel.
type sampler struct {
	trace      func(ray.Ray) vec3.T
	rng        *rand.Rand
	maxSamples int
}

// settled reports whether the average moved by less than
// contact.SmallNumber when the k-th sample took the running sum from prev to
// sum.  It compares k*S(k-1) against (k-1)*S(k) so no average is divided out.
// The average before the first sample is black.
func settled(prev, sum vec3.T, k int) bool {
	if k == 1 {
		return sum.Norm() < contact.SmallNumber
	}
	kf := float64(k)
	moved := vec3.SubVV(vec3.MulVS(sum, kf-1), vec3.MulVS(prev, kf))
	return moved.Norm() < contact.SmallNumber*kf*(kf-1)
}

// pixel returns the color of pixel (col, row) and the number of samples it
// took.  The color is the sum of the samples divided by how many there were.
func (s *sampler) pixel(view *camera.View, col, row int) (vec3.T, int) {
	sum := vec3.T{}
	for k := 1; k <= s.maxSamples; k++ {
		jitter := vec3.MulVS(vec3.UniformUnitDistribution(s.rng), 0.5)
		prev := sum
		sum = vec3.AddVV(sum, s.trace(view.Ray(col, row, jitter)))

		if settled(prev, sum, k) {
			return vec3.DivVS(sum, float64(k)), k
		}
	}
	return vec3.DivVS(sum, float64(s.maxSamples)), s.maxSamples
}
