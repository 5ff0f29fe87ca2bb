// CLAUDE:SUMMARY Chi handler for offline diffing of two serialized snapshots.
package cartdiff

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/cartwatch/snapshot"
)

// DiffRequest carries the two snapshots to reconcile, plus the price
// threshold used for the attention flag.
type DiffRequest struct {
	Baseline       []snapshot.OrderItem `json:"baseline"`
	Current        []snapshot.CartItem  `json:"current"`
	PriceThreshold float64              `json:"priceThreshold,omitempty"`
	Warnings       []string             `json:"warnings,omitempty"`
}

// DiffResponse is the diff plus derived review hints. Warnings from the
// extraction travel through untouched so consumers know the diff may rest
// on incomplete data.
type DiffResponse struct {
	Diff              *CartDiff `json:"diff"`
	HasChanges        bool      `json:"hasChanges"`
	RequiresAttention bool      `json:"requiresAttention"`
	Description       string    `json:"description"`
	Warnings          []string  `json:"warnings,omitempty"`
}

// Compute reconciles a DiffRequest into a DiffResponse.
func Compute(req *DiffRequest) *DiffResponse {
	d := Diff(req.Baseline, req.Current)
	return &DiffResponse{
		Diff:              d,
		HasChanges:        HasChanges(d),
		RequiresAttention: RequiresUserAttention(d, req.PriceThreshold),
		Description:       Describe(d),
		Warnings:          req.Warnings,
	}
}

// RegisterHTTP mounts the diff endpoint on a chi router. Requests that omit
// priceThreshold fall back to defaultPriceThreshold.
func RegisterHTTP(r chi.Router, defaultPriceThreshold float64) {
	r.Post("/diff", func(w http.ResponseWriter, req *http.Request) {
		var in DiffRequest
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if in.PriceThreshold <= 0 {
			in.PriceThreshold = defaultPriceThreshold
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Compute(&in))
	})
}
