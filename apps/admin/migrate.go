package main

import (
	"github.com/researchops/grantboard/storage/database"
)

// migrate applies embedded migrations. "up" is the default; "down",
// "status" and "version" are passed through to goose.
func (cli *commandLine) migrate(args []string) error {
	command := "up"
	if len(args) > 0 {
		command = args[0]
	}
	return database.RunMigration(cli.db.DB, command)
}
