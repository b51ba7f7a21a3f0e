package handlers

import (
	"net/http"

	"github.com/beastmint/mintd/internal/interface/http/response"
)

func Health(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, healthResponse{true, version})
	}
}
