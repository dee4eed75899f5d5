package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrTradeForbidden    = errors.New("trading forbidden for this api key")
	ErrRateLimited       = errors.New("rate limited")
	ErrInvalidConfidence = errors.New("invalid confidence label")
	ErrNoVerdict         = errors.New("no parsable verdict in analyst output")
	ErrNotBinary         = errors.New("market is not binary")
)
