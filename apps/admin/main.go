package main

import (
	"context"
	"log"
	"os"

	"github.com/womanacademy/renluyen/apps/shared"
	"github.com/womanacademy/renluyen/core"
)

func main() {
	logger := log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()
	appLogger, err := shared.NewLogger(conf, "admin")
	if err != nil {
		logger.Fatal(err)
	}
	defer appLogger.Close()

	// set up DB
	repos, err := shared.OpenRepositories(conf, false /* migrate */)
	if err != nil {
		logger.Fatal(err)
	}
	svcs, err := shared.NewServices(context.Background(), conf, repos, appLogger)
	if err != nil {
		logger.Fatal(err)
	}

	// start CLI
	cli := newCommandLine(conf, repos, svcs)
	err = cli.run(os.Args)
	_ = svcs.Close()
	_ = repos.Close()
	if err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
