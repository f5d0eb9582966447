package main

import (
	"fmt"

	"github.com/pkg/errors"

	echoapi "github.com/womanacademy/renluyen/apps/api/echo"
	"github.com/womanacademy/renluyen/core"
)

var errUnknownRole = errors.New("role must be one of: student, teacher")

func (cli *commandLine) token(actor core.Actor) error {
	if actor.Role != core.RoleStudent && actor.Role != core.RoleTeacher {
		return errUnknownRole
	}
	token, err := echoapi.GenerateToken(echoapi.GetActorClaims(actor, cli.conf), cli.conf.SecretKey)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	_, _ = fmt.Fprintln(cli.stdout, token)
	return nil
}
