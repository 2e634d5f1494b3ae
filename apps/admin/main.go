package main

import (
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/mkuu/darasa/core"
	"github.com/mkuu/darasa/core/schema"
	"github.com/mkuu/darasa/core/store"
	"github.com/mkuu/darasa/core/user"
	logsvc "github.com/mkuu/darasa/services/logger"
	"github.com/mkuu/darasa/storage/snapshot/dummy"
	"github.com/mkuu/darasa/storage/snapshot/file"
	"github.com/mkuu/darasa/storage/snapshot/postgres"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up the store
	var persister store.Persister
	switch conf.Snapshot.Backend {
	case "postgres":
		pg, err := postgres.Open(conf.Snapshot.DatabaseURL)
		errAndDie(err)
		defer pg.Close()
		persister = pg
	case "dummy":
		persister = dummy.NewPersister()
	default:
		persister = file.NewPersister(conf.Snapshot.Path)
	}
	st := store.New(store.Options{Persister: persister, Logger: logsvc.NewStdLogger(logger)})
	schema.Register(st)

	if err := st.LoadSnapshot(); err != nil && errors.Cause(err) != store.ErrNoSnapshot {
		errAndDie(err)
	}

	// start CLI
	cli := commandLine{
		st:     st,
		usrSvc: user.NewService(st),
		conf:   conf,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
