package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"staffdesk.io/internal/config"
	"staffdesk.io/internal/hr"
	"staffdesk.io/internal/migrate"
	"staffdesk.io/internal/seed"
	"staffdesk.io/internal/store/pg"
)

func main() {
	log.SetFlags(0)
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	dsn := flag.String("dsn", cfg.Postgres.DSN, "PostgreSQL DSN (defaults to DB_DSN)")
	timeout := flag.Duration("timeout", 60*time.Second, "Overall timeout")
	flag.Parse()

	if *dsn == "" {
		log.Fatal("missing DSN: provide via -dsn or DB_DSN")
	}
	if len(flag.Args()) == 0 {
		log.Fatal("usage: migrate [up|down|status|pending|seed]")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	store, err := pg.Open(*dsn, 2)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer store.Close()

	mgr := migrate.NewManager(store.DB())

	switch cmd := flag.Arg(0); cmd {
	case "up":
		var applied []string
		applied, err = mgr.Up(ctx)
		for _, name := range applied {
			fmt.Println("applied", name)
		}
	case "down":
		var name string
		name, err = mgr.Down(ctx)
		if err == nil {
			fmt.Println("reverted", name)
		}
	case "status", "pending":
		var names []string
		if cmd == "status" {
			names, err = mgr.Status(ctx)
		} else {
			names, err = mgr.Pending(ctx)
		}
		for _, name := range names {
			fmt.Println(name)
		}
	case "seed":
		loc, lerr := cfg.Location()
		if lerr != nil {
			log.Fatal(lerr)
		}
		var res seed.Result
		res, err = seed.Run(ctx, hr.NewService(store, hr.WithLocation(loc)))
		for _, email := range res.Users {
			fmt.Println("seeded", email)
		}
	default:
		log.Fatalf("unknown command %q", cmd)
	}
	if err != nil {
		log.Fatalf("migrate %s: %v", flag.Arg(0), err)
	}
}
