// Package controller contains HTTP middlewares and helper handlers used by the
// report API server.
//
// Provided middlewares:
//   - WithCORS: Adds permissive CORS headers for the dashboard origin and handles OPTIONS preflight.
//   - WithLogger: Attaches a request-scoped logger and request ID to the context and logs access
//     info including the response size.
//
// Provided helpers:
//   - PprofMux: Returns a ServeMux exposing net/http/pprof handlers, mountable as a subtree.
package controller
