package domain

import "errors"

var (
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("Your requested Item is not found")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("Given Param is not valid")
	// ErrInvalidJsonFormat will throw if an upstream body can not be decoded
	ErrInvalidJsonFormat = errors.New("invalid JSON format")

	// request error
	ErrInvalidAddress = errors.New("Invalid address")
	ErrEmptyOwner     = errors.New("Please enter a wallet address")

	// configuration error
	ErrMissingApiKey = errors.New("api key missing")

	ErrSessionNotFound = errors.New("session not found")
	// ErrBusy means the load could not be queued, the client may try again later
	ErrBusy = errors.New("too many loads in flight")
)
