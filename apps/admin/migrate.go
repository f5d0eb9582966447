package main

import (
	"errors"

	"github.com/womanacademy/renluyen/storage/database"
)

var (
	runMigrationsFunc = database.RunMigrations // mockable

	errNoDatabase = errors.New("migrate requires the postgres database engine")
)

func (cli *commandLine) migrate(args []string) error {
	if cli.repos.DB == nil {
		return errNoDatabase
	}
	return runMigrationsFunc(cli.repos.DB.DB, args[0], args[1:]...)
}
