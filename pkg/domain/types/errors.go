package types

import "github.com/m-mizutani/goerr/v2"

var (
	ErrInvalidOption   = goerr.New("invalid option")
	ErrInvalidRegistry = goerr.New("invalid owner registry")
)
