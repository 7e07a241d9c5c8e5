package internal

import "github.com/gorilla/mux"

// Handlers is a collection of HTTP handlers that can add themselves to a
// router.
type Handlers interface {
	AddHandlers(*mux.Router)
}
