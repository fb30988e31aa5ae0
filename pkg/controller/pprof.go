package controller

import (
	"net/http"
	"net/http/pprof"
)

// PprofMux returns an http.ServeMux with net/http/pprof handlers registered.
// pprof.Index only resolves named profiles under /debug/pprof/, so the special
// handlers are bound at both roots and the mux serves correctly whether hit
// directly or mounted as a subtree.
func PprofMux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", pprof.Index)
	for route, h := range map[string]http.HandlerFunc{
		"/cmdline": pprof.Cmdline,
		"/profile": pprof.Profile,
		"/symbol":  pprof.Symbol,
		"/trace":   pprof.Trace,
	} {
		mux.HandleFunc(route, h)
		mux.HandleFunc("/debug/pprof"+route, h)
	}

	return mux
}
