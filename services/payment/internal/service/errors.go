package service

import "errors"

var (
	ErrValidation = errors.New("validation") // 400
	ErrNotFound   = errors.New("not found")  // 404
	ErrGateway    = errors.New("stripe")     // 500, message passed through
)
