package main

import "errors"

func asCliError(err error, target **cliError) bool { return errors.As(err, target) }
