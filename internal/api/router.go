package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// corsMiddleware adds CORS headers to each response
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "X-Embed-ID, X-Payload-MD5, Content-Disposition")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NewRouter creates and configures a new application router.
func NewRouter(history History, maxUploadBytes int64) *mux.Router {
	router := mux.NewRouter()

	router.Use(corsMiddleware)

	apiV1 := router.PathPrefix("/api/v1").Subrouter()

	h := NewHandlers(history, maxUploadBytes)

	apiV1.HandleFunc("/embed", h.HandleEmbed).Methods(http.MethodPost)
	apiV1.HandleFunc("/extract", h.HandleExtract).Methods(http.MethodPost)
	apiV1.HandleFunc("/capacity", h.HandleCapacity).Methods(http.MethodPost)
	apiV1.HandleFunc("/algorithms", h.HandleAlgorithmListing).Methods(http.MethodGet)

	apiV1.HandleFunc("/history/{uuid:[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}}", h.HandleGetHistory).Methods(http.MethodGet)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	return router
}
