package server

import "errors"

var (
	ErrMatcherRequired = errors.New("matcher is required")
	ErrCorpusRequired  = errors.New("corpus is required")
)
