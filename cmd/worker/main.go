package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/zentrya/ingest/internal/catalog"
	"github.com/zentrya/ingest/internal/config"
	"github.com/zentrya/ingest/internal/jobstatus"
	"github.com/zentrya/ingest/internal/logging"
	"github.com/zentrya/ingest/internal/metrics"
	"github.com/zentrya/ingest/internal/pipeline"
	"github.com/zentrya/ingest/internal/probe"
	"github.com/zentrya/ingest/internal/queue"
	"github.com/zentrya/ingest/internal/storage"
	"github.com/zentrya/ingest/internal/tracing"
	"github.com/zentrya/ingest/internal/transcoder"
	"github.com/zentrya/ingest/internal/uploader"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewDefaultLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}

	if cfg.Tracing.Enabled {
		_, closer, err := tracing.InitTracer(cfg.Tracing.ServiceName+"-worker", cfg.Tracing.JaegerEndpoint)
		if err != nil {
			logger.Fatalf("failed to init tracer: %v", err)
		}
		defer closer.Close()
	}

	db, err := catalog.NewDB(cfg.Database)
	if err != nil {
		logger.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	repo := catalog.NewRepository(db)

	store, err := storage.New(cfg.Storage)
	if err != nil {
		logger.Fatalf("failed to init storage: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	jobs := jobstatus.NewRedisStore(redisClient, cfg.Pipeline.JobTTL)

	q, err := queue.New(cfg.Queue)
	if err != nil {
		logger.Fatalf("failed to connect to queue: %v", err)
	}
	defer q.Close()

	prober := probe.New(cfg.Pipeline.FFprobePath, cfg.Pipeline.ProbeTimeout, logger)
	ffmpeg := transcoder.NewFFmpeg(cfg.Pipeline.FFmpegPath, cfg.Pipeline.TranscodeTimeout, logger)
	orchestrator := transcoder.NewOrchestrator(prober, ffmpeg, cfg.Pipeline.ThumbnailCount, logger)
	up := uploader.New(store, cfg.Pipeline.UploadWorkers, logger)
	pipe := pipeline.New(orchestrator, up, cfg.Pipeline.WorkDir, logger)

	metricsServer := metrics.NewServer(cfg.Metrics.Port, logger)
	go func() {
		if err := metricsServer.Start(); err != nil {
			logger.ErrorWithErr("metrics server stopped", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutting down worker")
		cancel()
	}()

	handler := func(req *queue.IngestRequest) error {
		log := logger.WithJobID(req.JobID).WithContent(string(req.Kind), req.ContentID)
		log.Infof("picked up ingest job for %s", req.SourcePath)

		tracker, err := jobstatus.NewTracker(ctx, jobs, req.JobID, req.ContentID, req.Kind, logger)
		if err != nil {
			log.ErrorWithErr("failed to init job tracker", err)
			return err
		}

		result, err := pipe.Run(ctx, pipeline.Request{
			JobID:      req.JobID,
			ContentID:  req.ContentID,
			Kind:       req.Kind,
			SourcePath: req.SourcePath,
		}, tracker)
		if err != nil {
			return err
		}

		// Playback state is persisted only after the upload is confirmed.
		if err := repo.SetPlayback(ctx, req.Kind, req.ContentID, result.HLSURL, result.Duration); err != nil {
			log.ErrorWithErr("failed to update catalog playback", err)
			metrics.RecordError("worker", "catalog_update")
		}

		if err := os.Remove(req.SourcePath); err != nil {
			log.ErrorWithErr("failed to remove source file", err)
		}

		return nil
	}

	logger.Info("worker started, waiting for ingest jobs")
	if err := q.Consume(ctx, handler); err != nil {
		logger.Fatalf("failed to consume jobs: %v", err)
	}

	<-ctx.Done()
	logger.Info("worker stopped")
}
