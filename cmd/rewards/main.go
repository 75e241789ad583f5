// Rewards prints a profitability summary of the sandwiches detected in a
// slot range: per-sandwich leg totals and the SOL-leg profit estimate,
// plus the range-wide sum.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"

	_ "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"

	"github.com/franco-bianco/sandwichgo/internal/config"
	"github.com/franco-bianco/sandwichgo/internal/store"
)

func main() {
	log := logrus.New()

	args := os.Args[1:]
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "usage: %s <start_slot> [<end_slot>]\n", os.Args[0])
		os.Exit(2)
	}
	startSlot, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		log.WithError(err).Fatal("rewards: invalid start slot")
	}
	endSlot := startSlot
	if len(args) >= 2 {
		endSlot, err = strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			log.WithError(err).Fatal("rewards: invalid end slot")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("rewards: config")
	}
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.WithError(err).Fatal("rewards: open store")
	}
	defer db.Close()

	profits, err := store.GetSandwichProfits(context.Background(), db, startSlot, endSlot)
	if err != nil {
		log.WithError(err).Fatal("rewards: get profits")
	}

	var total uint64
	for _, p := range profits {
		total += p.EstProfitLamports
		fmt.Printf("%s slot=%d frontrun %d -> %d, backrun %d -> %d, est_profit=%d lamports\n",
			p.ID, p.Slot, p.FrontrunIn, p.FrontrunOut, p.BackrunIn, p.BackrunOut, p.EstProfitLamports)
	}
	fmt.Printf("%d sandwiches in slots %d-%d, est total profit %d lamports\n",
		len(profits), startSlot, endSlot, total)
}
