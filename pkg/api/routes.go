package api

import "net/http"

// Mount registers the proxy, sync and event routes on mux.
func Mount(mux *http.ServeMux, proxies *Proxies, sync *Sync, ev *Events) {
	mux.HandleFunc("GET /proxy", proxies.List)
	mux.HandleFunc("GET /proxy/lookup", proxies.Lookup)
	mux.HandleFunc("POST /proxy/create", proxies.Create)
	mux.HandleFunc("DELETE /proxy/delete", proxies.Delete)

	mux.HandleFunc("POST /sync", sync.Set)
	mux.HandleFunc("DELETE /sync", sync.Delete)
	mux.HandleFunc("POST /sync/multi", sync.SetMulti)
	mux.HandleFunc("GET /sync/health", sync.Health)

	mux.HandleFunc("GET /ws/events", ev.ServeWS)
}
