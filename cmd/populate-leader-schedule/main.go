// Populates leader_mapping/leader_schedule for one epoch (defaults to the
// epoch currently in progress).
package main

import (
	"context"
	"database/sql"
	"os"
	"strconv"

	"github.com/gagliardetto/solana-go/rpc"
	_ "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"

	"github.com/franco-bianco/sandwichgo/internal/config"
	"github.com/franco-bianco/sandwichgo/internal/leaderschedule"
	"github.com/franco-bianco/sandwichgo/internal/store"
)

func main() {
	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("populate-leader-schedule: config")
	}
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.WithError(err).Fatal("populate-leader-schedule: open store")
	}
	defer db.Close()

	ctx := context.Background()
	if err := store.EnsureSchema(ctx, db); err != nil {
		log.WithError(err).Fatal("populate-leader-schedule: ensure schema")
	}

	populator := leaderschedule.New(db, rpc.New(cfg.RPCURL), log)

	var epoch uint64
	if len(os.Args) >= 2 {
		epoch, err = strconv.ParseUint(os.Args[1], 10, 64)
		if err != nil {
			log.WithError(err).Fatal("populate-leader-schedule: invalid epoch")
		}
	} else {
		epoch, err = populator.CurrentEpoch(ctx)
		if err != nil {
			log.WithError(err).Fatal("populate-leader-schedule: current epoch")
		}
	}

	if err := populator.Populate(ctx, epoch); err != nil {
		log.WithError(err).Fatal("populate-leader-schedule: populate")
	}
	log.WithField("epoch", epoch).Info("populate-leader-schedule: done")
}
