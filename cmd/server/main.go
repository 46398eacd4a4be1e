package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lee-lou2/aws-ses-sender/internal/api"
	"github.com/lee-lou2/aws-ses-sender/internal/batcher"
	"github.com/lee-lou2/aws-ses-sender/internal/config"
	"github.com/lee-lou2/aws-ses-sender/internal/dispatch"
	"github.com/lee-lou2/aws-ses-sender/internal/provider"
	"github.com/lee-lou2/aws-ses-sender/internal/scheduler"
	"github.com/lee-lou2/aws-ses-sender/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ses, err := provider.NewSES(ctx, cfg.AWSRegion, cfg.AWSAccessKey, cfg.AWSSecretKey)
	if err != nil {
		log.Fatalf("failed to initialize SES client: %v", err)
	}

	sendQueue := make(chan dispatch.Message, cfg.SendQueueSize)
	resultQueue := make(chan dispatch.Message, cfg.ResultQueueSize)

	disp := dispatch.New(ses, cfg.MaxPerSecond, sendQueue, resultQueue, cfg.SenderAddress, cfg.PublicServerURL)
	batch := batcher.New(db, resultQueue)
	sched := scheduler.New(db, sendQueue)

	refillStop := make(chan struct{})
	go disp.Bucket().RunRefiller(refillStop)

	schedStop := make(chan struct{})
	go sched.Run(schedStop)

	dispatchDone := make(chan struct{})
	go func() {
		disp.Run()
		close(dispatchDone)
	}()

	batchDone := make(chan struct{})
	go func() {
		batch.Run()
		close(batchDone)
	}()

	handlers := api.NewHandlers(db, sendQueue, cfg.APIKey)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: handlers.Routes(),
	}

	go func() {
		log.Printf("listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-done
	log.Println("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("http server shutdown error: %v", err)
	}

	close(schedStop)
	close(sendQueue)
	<-dispatchDone
	close(refillStop)
	close(resultQueue)
	<-batchDone

	log.Println("shutdown complete")
}
