// trailcam streams the follow-me cart's processed video feed: it detects
// the target person, computes a steering suggestion, flags obstacles in
// the travel path, and serves the annotated frames plus decision data
// over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"trailcam/camera"
	"trailcam/detection"
	"trailcam/overlay"
	"trailcam/pipeline"
	"trailcam/server"
)

var (
	configFile = flag.String("c", "", "Optional JSON config file (overrides built-in defaults)")
	input      = flag.String("input", "", "Capture source: device index (\"0\") or stream URL")
	listen     = flag.String("listen", "", "HTTP listen address (default :5000)")
	weights    = flag.String("weights", "", "YOLO weights file")
	modelCfg   = flag.String("model-config", "", "YOLO network config file")
	names      = flag.String("names", "", "Class names file")
	debugMode  = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *debugMode {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg := DefaultConfig()
	if *configFile != "" {
		if err := cfg.Load(*configFile); err != nil {
			log.WithError(err).Fatal("could not load config")
		}
		log.WithField("file", *configFile).Info("loaded config")
	}
	applyFlags(&cfg)

	// The camera is opened once here and injected everywhere it is
	// needed; a failed open degrades the feed instead of aborting.
	dev, err := camera.Open(cfg.CaptureSource)
	if err != nil {
		log.WithError(err).Warn("camera unavailable, feed will show a placeholder")
	} else {
		log.WithField("source", dev.Source()).Info("camera opened")
	}
	defer dev.Close()

	// Same for the detector: a missing or broken model leaves the feed
	// running without detection.
	manager := detection.NewManager(log)
	var detector pipeline.Detector
	if err := manager.Initialize(cfg.WeightsPath, cfg.ModelConfig, cfg.NamesPath); err != nil {
		log.WithError(err).Warn("detector unavailable, feed will run without detection")
	} else {
		detector = manager.Provider()
	}
	defer manager.Close()

	engine := pipeline.NewEngine(dev, detector,
		detection.NewClassifier(cfg.ObstacleLabels), overlay.NewRenderer(), log)

	srv := &http.Server{
		Addr:    cfg.Listen,
		Handler: server.New(engine, dev, log).Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Listen).Info("trailcam server listening")
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.WithField("signal", sig).Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.WithError(err).Error("server shutdown failed")
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}
}

// applyFlags lets explicitly set flags win over the config file.
func applyFlags(cfg *Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.CaptureSource = *input
		case "listen":
			cfg.Listen = *listen
		case "weights":
			cfg.WeightsPath = *weights
		case "model-config":
			cfg.ModelConfig = *modelCfg
		case "names":
			cfg.NamesPath = *names
		}
	})
}
