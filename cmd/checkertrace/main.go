// checkertrace renders a checkerboard with solids placed on its squares.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"checkertrace/camera"
	"checkertrace/debugserver"
	"checkertrace/outputstore"
	"checkertrace/renderer"
	"checkertrace/rgbimage"
	"checkertrace/scene"
	"checkertrace/vmath/vec3"

	"cloud.google.com/go/profiler"
	"cloud.google.com/go/storage"
	"contrib.go.opencensus.io/exporter/stackdriver"
	cloudmetrics "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/metric"
	cloudtrace "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
	"github.com/golang/glog"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"
	googleopt "google.golang.org/api/option"
	"google.golang.org/protobuf/encoding/prototext"
)

// squareList is a comma-separated list of chess squares.
type squareList []string

func (s *squareList) String() string {
	return strings.Join(*s, ",")
}

func (s *squareList) Set(v string) error {
	*s = nil
	for _, sq := range strings.Split(v, ",") {
		if sq = strings.TrimSpace(sq); sq != "" {
			*s = append(*s, sq)
		}
	}
	return nil
}

var (
	outputPNG = flag.String("output-png", "checkertrace.png", "Write the render as a PNG to this file.  Empty to skip.")
	outputRaw = flag.String("output-raw", "", "Write the render in raw float32 .rgb format to this file.  Empty to skip.")
	uploadURL = flag.String("upload-url", "", "Copy the outputs to this gs://bucket/prefix after rendering.")

	width     = flag.Int("width", 500, "Output image columns")
	height    = flag.Int("height", 500, "Output image rows")
	samples   = flag.Int("samples", renderer.DefaultSamples, "Maximum samples per pixel")
	maxDepth  = flag.Int("max-depth", renderer.DefaultMaxDepth, "Maximum number of reflection and transmission bounces")
	seed      = flag.Int64("seed", 1, "Seed for the sample jitter")
	logPeriod = flag.Duration("progress-log-period", 10*time.Second, "Minimum time between progress log lines.  Zero disables them.")

	spheres      = squareList{"d7"}
	cubes        = squareList{"a7"}
	tetrahedrons = squareList{"b4"}
	lights       = squareList{"b6"}

	printHeader = flag.Bool("print-header", false, "Log the raw output header in text form.")

	debugListen = flag.String("debug-listen", "127.0.0.1:8001", "Server address:port for debug endpoint.  Empty to disable.")

	monitoring           = flag.Bool("monitoring", false, "Enable monitoring?")
	monitoringProject    = flag.String("monitoring-project", "", "Override project used for monitoring integration.  If not specified, the project associated with Application Default Credentials is used.")
	monitoringTraceRatio = flag.Float64("monitoring-trace-ratio", 0.01, "What ratio of traces should be exported?")
	enableProfiling      = flag.Bool("enable-profiling", false, "Enable Cloud Profiler")
	enableMetrics        = flag.Bool("enable-metrics", false, "Export opencensus metrics to Cloud Monitoring")

	cpuprofile = flag.String("cpu-profile", "", "write cpu profile to `file`")
	memprofile = flag.String("mem-profile", "", "write memory profile to `file`")
)

func init() {
	flag.Var(&spheres, "sphere", "Comma-separated squares to place spheres on")
	flag.Var(&cubes, "cube", "Comma-separated squares to place cubes on")
	flag.Var(&tetrahedrons, "tetrahedron", "Comma-separated squares to place tetrahedrons on")
	flag.Var(&lights, "light", "Comma-separated squares to hang white lights over")
}

func main() {
	flag.Parse()
	defer glog.Flush()

	glog.CopyStandardLogTo("INFO")

	glog.Infof("flags:")
	flag.VisitAll(func(f *flag.Flag) {
		glog.Infof("%s: %q", f.Name, f.Value.String())
	})

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			glog.Fatalf("Could not create CPU profile: %v", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			glog.Fatalf("Could not start CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *enableProfiling {
		if err := profiler.Start(profiler.Config{
			Service:        "checkertrace",
			ServiceVersion: "0.0.1",
		}); err != nil {
			glog.Fatalf("Error initializing profiler: %v", err)
		}
	}

	if *monitoring {
		metricsOpts := []cloudmetrics.Option{}
		traceOpts := []cloudtrace.Option{}
		if *monitoringProject != "" {
			metricsOpts = append(metricsOpts, cloudmetrics.WithProjectID(*monitoringProject))
			traceOpts = append(traceOpts, cloudtrace.WithProjectID(*monitoringProject))
		}

		_, traceShutdown, err := cloudtrace.InstallNewPipeline(traceOpts, sdktrace.WithSampler(sdktrace.TraceIDRatioBased(*monitoringTraceRatio)))
		if err != nil {
			glog.Fatalf("Failed to install Cloud Trace OpenTelemetry trace pipeline: %v", err)
		}
		defer traceShutdown()

		pusher, err := cloudmetrics.InstallNewPipeline(metricsOpts)
		if err != nil {
			glog.Fatalf("Failed to install Cloud Metrics OpenTelemetry meter pipeline: %v", err)
		}
		defer pusher.Stop(ctx)
	}

	if err := renderer.RegisterMetrics(); err != nil {
		glog.Fatalf("Failed to register renderer metrics: %v", err)
	}

	if *enableMetrics {
		exporter, err := stackdriver.NewExporter(stackdriver.Options{
			ProjectID:         *monitoringProject,
			MetricPrefix:      "checkertrace",
			ReportingInterval: 60 * time.Second,
		})
		if err != nil {
			glog.Fatalf("Error initializing metrics exporter: %v", err)
		}
		if err := exporter.StartMetricsExporter(); err != nil {
			glog.Fatalf("Error starting metrics exporter: %v", err)
		}
		defer exporter.Flush()
		defer exporter.StopMetricsExporter()
	}

	if err := run(ctx); err != nil {
		glog.Errorf("Error: %v", err)
		glog.Flush()
		os.Exit(1)
	}

	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			glog.Fatalf("Could not create memory profile: %v", err)
		}
		defer f.Close()
		if err := pprof.WriteHeapProfile(f); err != nil {
			glog.Fatalf("Could not write memory profile: %v", err)
		}
	}
}

func buildScene() (*scene.Scene, error) {
	b := scene.NewBuilder()
	for _, group := range []struct {
		kind    scene.Kind
		squares squareList
	}{
		{scene.KindLight, lights},
		{scene.KindTetrahedron, tetrahedrons},
		{scene.KindSphere, spheres},
		{scene.KindCube, cubes},
	} {
		for _, sq := range group.squares {
			if err := b.Place(group.kind, sq); err != nil {
				return nil, err
			}
		}
	}
	return b.Build(), nil
}

func run(ctx context.Context) error {
	s, err := buildScene()
	if err != nil {
		return fmt.Errorf("while building scene: %w", err)
	}

	def := camera.Default()
	view, err := camera.New(def.Position, def.LookAt, vec3.T{0, 1, 0}, *width, *height)
	if err != nil {
		return fmt.Errorf("while setting up camera: %w", err)
	}

	var store *outputstore.Store
	if *uploadURL != "" {
		bucket, prefix, err := outputstore.ParseURL(*uploadURL)
		if err != nil {
			return fmt.Errorf("while parsing upload URL: %w", err)
		}
		gcs, err := storage.NewClient(ctx, googleopt.WithGRPCConnectionPool(1))
		if err != nil {
			return fmt.Errorf("while creating GCS client: %w", err)
		}
		defer gcs.Close()
		store = outputstore.New(gcs, bucket, prefix)
	}

	progress := &renderer.Progress{}
	opts := renderer.DefaultOptions()
	opts.Samples = *samples
	opts.MaxDepth = *maxDepth
	opts.Seed = *seed
	opts.Progress = progress
	opts.ProgressLogInterval = *logPeriod

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	g, gctx := errgroup.WithContext(runCtx)

	if *debugListen != "" {
		debug := debugserver.New(*debugListen, progress)
		if err := debug.RegisterMetrics(); err != nil {
			return fmt.Errorf("while registering debug metrics: %w", err)
		}
		g.Go(func() error {
			return debug.Run(gctx)
		})
	}

	g.Go(func() error {
		signalCh := make(chan os.Signal, 1)
		signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(signalCh)

		select {
		case sig := <-signalCh:
			return fmt.Errorf("received %v", sig)
		case <-gctx.Done():
			return nil
		}
	})

	g.Go(func() error {
		// The other members only run as long as the render does.
		defer stop()

		im := rgbimage.New(view.Width, view.Height)
		im.Samples = opts.Samples
		im.Depth = opts.MaxDepth

		stats, err := renderer.TraceScreen(gctx, s, view, im, opts)
		if err != nil {
			return fmt.Errorf("while rendering: %w", err)
		}
		glog.Infof("Rendered %d pixels in %v: %d samples (%.2f/pixel, min %d, max %d), %d converged early",
			stats.Pixels, stats.Elapsed, stats.Samples, stats.MeanSamples(), stats.MinSamples, stats.MaxSamples, stats.EarlyExits)

		return writeOutputs(gctx, im, store)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return ctx.Err()
}

func writeOutputs(ctx context.Context, im *rgbimage.Image, store *outputstore.Store) error {
	if *printHeader {
		hdr, err := im.Header()
		if err != nil {
			return err
		}
		glog.Infof("Raw header:\n%s", prototext.Format(hdr))
	}

	written := []string{}
	if *outputPNG != "" {
		if err := rgbimage.WriteFile(im, *outputPNG, true); err != nil {
			return fmt.Errorf("while writing %s: %w", *outputPNG, err)
		}
		written = append(written, *outputPNG)
	}
	if *outputRaw != "" {
		if err := rgbimage.WriteFile(im, *outputRaw, false); err != nil {
			return fmt.Errorf("while writing %s: %w", *outputRaw, err)
		}
		written = append(written, *outputRaw)
	}

	for _, name := range written {
		glog.Infof("Wrote %s", name)
		if store == nil {
			continue
		}
		url, err := store.Upload(ctx, name)
		if err != nil {
			return fmt.Errorf("while uploading %s: %w", name, err)
		}
		glog.Infof("Uploaded %s to %s", name, url)
	}
	return nil
}
