package orchestrator

import "errors"

var errValidationEmptyQuery = errors.New("query must not be empty")
