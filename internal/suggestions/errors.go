package suggestions

import "errors"

var (
	// ErrTransportOpen means a connection could not be established
	ErrTransportOpen = errors.New("transport open failed")

	// ErrTransportRuntime means an open connection failed or was closed by the peer
	ErrTransportRuntime = errors.New("transport runtime error")

	// ErrMalformedMessage means a payload was unparseable or had an unknown type
	ErrMalformedMessage = errors.New("malformed message")
)
