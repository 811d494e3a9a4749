package server

import "errors"

var (
	ErrNoVocabulary = errors.New("no vocabulary loaded")
	ErrEmptyInput   = errors.New("request has no tokens")
)
