package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/researchops/grantboard/core/ingest"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db        *sqlx.DB
	ingestSvc *ingest.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate [up|down|status|version] - apply database migrations")
	fmt.Println("  seed                             - load the demo dataset")
	fmt.Println("  ingest -file FILE                - ingest a grants CSV file")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	ingestCmd := flag.NewFlagSet("ingest", flag.ExitOnError)
	ingestFile := ingestCmd.String("file", "", "Path to the CSV file to ingest.")

	switch args[1] {
	case "migrate":
		return cli.migrate(args[2:])
	case "seed":
		return cli.seed()
	case "ingest":
		if err := ingestCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *ingestFile == "" {
			ingestCmd.Usage()
			return errHelp
		}
		return cli.ingest(*ingestFile)
	default:
		cli.printUsage()
		return errHelp
	}
}
