package handlers

import "net/http"

// Middleware wraps a handler func, typically to inject a database scope
// into the request context (see database.WithProjectContext and
// database.WithGlobalContext).
type Middleware func(http.HandlerFunc) http.HandlerFunc
