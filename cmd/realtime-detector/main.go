// The realtime detector follows the live slot stream and, on every fourth
// slot, runs sandwich detection over the leader group far enough behind
// the front that its events have all been inserted.
package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	_ "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"

	"github.com/franco-bianco/sandwichgo/internal/config"
	"github.com/franco-bianco/sandwichgo/internal/geyser"
	"github.com/franco-bianco/sandwichgo/internal/httpapi"
	"github.com/franco-bianco/sandwichgo/internal/realtime"
)

const reconnectDelay = 5 * time.Second

func main() {
	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("realtime-detector: config")
	}
	if err := cfg.RequireGRPC(); err != nil {
		log.WithError(err).Fatal("realtime-detector: config")
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.WithError(err).Fatal("realtime-detector: open store")
	}
	defer db.Close()

	ctx := context.Background()
	go func() {
		if err := httpapi.New(cfg.APIPort, nil).Run(ctx); err != nil {
			log.WithError(err).Error("realtime-detector: http server")
		}
	}()

	streamClient := rpc.New(cfg.GRPCURL)
	orchestrator := realtime.New(db, log)

	for {
		source := geyser.NewSource(streamClient, log)
		errCh := make(chan error, 1)
		go func() { errCh <- source.Run(ctx) }()
		orchestrator.Run(ctx, source.Slots)
		if err := <-errCh; err != nil {
			log.WithError(err).Warn("realtime-detector: slot stream dropped, reconnecting")
		}
		time.Sleep(reconnectDelay)
	}
}
