package handlers

import (
	"net/http"

	"github.com/jugnunagar/folio/internal/posts"
)

type storageResponse struct {
	OK      bool   `json:"ok"`
	Medium  string `json:"medium"`
	Count   int    `json:"count"`
	Version string `json:"version"`
	Error   string `json:"error,omitempty"`
}

// StorageInfo reports which medium backs the collection and whether it
// currently reads cleanly.
func StorageInfo(store *posts.CollectionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := storageResponse{OK: true, Medium: store.MediumName()}
		list, version, err := store.Snapshot(r.Context())
		if err != nil {
			resp.OK = false
			resp.Error = err.Error()
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
		resp.Count = len(list)
		resp.Version = version
		writeJSON(w, http.StatusOK, resp)
	}
}
