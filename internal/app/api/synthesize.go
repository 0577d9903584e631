package api

import (
	"encoding/json"
	"net/http"

	"app/pkg/ctxstore"
)

type synthesizeReq struct {
	Text string `json:"text"`
}

type synthesizeResp struct {
	AudioURL string `json:"audioUrl"`
}

func (api *API) synthesize(w http.ResponseWriter, r *http.Request) {
	userID, ok := ctxstore.GetUserID(r.Context())
	if !ok {
		api.respondError(w, http.StatusUnauthorized, "no user in context")

		return
	}

	var req synthesizeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.respondError(w, http.StatusBadRequest, "invalid request body")

		return
	}

	if req.Text == "" {
		api.respondError(w, http.StatusBadRequest, "text is required")

		return
	}

	audioURL, err := api.gateway.Submit(r.Context(), req.Text)
	if err != nil {
		api.logger.Error("failed to synthesize speech", "err", err)
		api.respondError(w, http.StatusInternalServerError, "failed to synthesize speech")

		return
	}

	if err := api.conversions.AddConversion(r.Context(), userID, req.Text, audioURL); err != nil {
		api.logger.Error("failed to save conversion", "err", err)
		api.respondError(w, http.StatusInternalServerError, "failed to save text and audio URL")

		return
	}

	api.respondJSON(w, http.StatusOK, &synthesizeResp{AudioURL: audioURL})
}
