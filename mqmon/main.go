package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/itohio/mq135/pkg/config"
	"github.com/itohio/mq135/pkg/link"
	"github.com/itohio/mq135/pkg/metrics"
	"github.com/itohio/mq135/pkg/monitor"
	"github.com/itohio/mq135/pkg/mq135"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

func init() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	var (
		portFlag      = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag    = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag      = flag.Bool("mock", false, "Use mocked device instead of serial port")
		calibrateFlag = flag.Bool("calibrate", false, "Calibrate in clean air after warm-up")
		listenFlag    = flag.String("listen", "", "Metrics listen address override")
		listFlag      = flag.Bool("list", false, "List serial ports and exit")
	)
	flag.Parse()

	if *listFlag {
		listPorts()
		return
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *listenFlag != "" {
		cfg.Metrics.Listen = *listenFlag
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Invalid log level %q: %v", cfg.Log.Level, err)
	}
	log.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *mockFlag, *calibrateFlag); err != nil {
		log.Fatal(err)
	}
}

func listPorts() {
	ports, err := link.Ports()
	if err != nil {
		log.Fatal(err)
	}
	for _, p := range ports {
		log.WithField("port", p.Name).Info(p.Description)
	}
}

func run(ctx context.Context, cfg *config.Config, useMock, calibrate bool) error {
	var device link.Device
	if useMock {
		device = link.NewMock(&cfg.Mock, cfg.Sensor.FullScale)
	} else {
		device = link.New(cfg.Serial.Port, cfg.Serial.BaudRate)
	}

	if err := device.Connect(); err != nil {
		return errors.Wrap(err, "failed to connect")
	}
	defer device.Close()

	mon, err := monitor.New(device, cfg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewBuildInfoCollector())
	metrics.New(reg).Attach(mon)
	mon.OnUpdate(logReading)

	srv := &http.Server{Addr: cfg.Metrics.Listen, Handler: metricsMux(reg)}
	go func() {
		log.WithField("listen", cfg.Metrics.Listen).Info("serving metrics")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("metrics server failed")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if calibrate {
		if err := warmupAndCalibrate(ctx, mon, cfg.Monitor.Warmup); err != nil {
			return err
		}
	} else {
		log.Warn("running uncalibrated, concentrations are rough estimates")
	}

	for range mon.Run(ctx) {
		// readings are consumed by the OnUpdate callbacks
	}

	log.Info("shutting down")
	return nil
}

func metricsMux(reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	return mux
}

func warmupAndCalibrate(ctx context.Context, mon *monitor.Monitor, warmup time.Duration) error {
	if warmup > 0 {
		log.WithField("warmup", warmup).Info("waiting for sensor heater, keep the sensor in clean air")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(warmup):
		}
	}
	return mon.Calibrate(ctx)
}

func logReading(r monitor.Reading) {
	fields := log.Fields{
		"rs":    r.Resistance,
		"ratio": r.Ratio,
	}
	for _, gas := range r.Gases {
		fields[strings.ToLower(gas.String())] = r.PPM[gas]
	}
	if !r.Calibrated {
		fields["r0"] = mq135.DefaultR0
	}
	log.WithFields(fields).Debug("reading")
}
