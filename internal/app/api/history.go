package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"app/pkg/ctxstore"
)

func (api *API) getTexts(w http.ResponseWriter, r *http.Request) {
	userID, ok := ctxstore.GetUserID(r.Context())
	if !ok {
		api.respondError(w, http.StatusUnauthorized, "no user in context")

		return
	}

	conversions, err := api.conversions.GetConversions(r.Context(), userID)
	if err != nil {
		api.logger.Error("failed to get conversions", "err", err)
		api.respondError(w, http.StatusInternalServerError, "failed to retrieve texts")

		return
	}

	api.respondJSON(w, http.StatusOK, conversions)
}

type saveTextReq struct {
	Text     string `json:"text"`
	AudioURL string `json:"audioUrl"`
}

func (api *API) saveText(w http.ResponseWriter, r *http.Request) {
	userID, ok := ctxstore.GetUserID(r.Context())
	if !ok {
		api.respondError(w, http.StatusUnauthorized, "no user in context")

		return
	}

	var req saveTextReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.respondError(w, http.StatusBadRequest, "invalid request body")

		return
	}

	if err := api.conversions.AddConversion(r.Context(), userID, req.Text, req.AudioURL); err != nil {
		api.logger.Error("failed to save conversion", "err", err)
		api.respondError(w, http.StatusInternalServerError, "failed to save text and audio URL")

		return
	}

	api.respondJSON(w, http.StatusCreated, &messageResp{Message: "Text and audio URL saved!"})
}

type historyItem struct {
	Text     string `json:"text"`
	AudioURL string `json:"audio_url"`
}

type saveHistoryReq struct {
	History []historyItem `json:"history"`
}

// saveHistory inserts one row per item concurrently, mirroring the bulk save
// the client issues on demand. There is no transaction across items: a
// failing item leaves the others committed.
func (api *API) saveHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := ctxstore.GetUserID(r.Context())
	if !ok {
		api.respondError(w, http.StatusUnauthorized, "no user in context")

		return
	}

	var req saveHistoryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.respondError(w, http.StatusBadRequest, "invalid request body")

		return
	}

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	for _, item := range req.History {
		item := item

		wg.Add(1)

		go func() {
			defer wg.Done()

			if err := api.conversions.AddConversion(r.Context(), userID, item.Text, item.AudioURL); err != nil {
				errOnce.Do(func() {
					firstErr = err
				})
			}
		}()
	}

	wg.Wait()

	if firstErr != nil {
		api.logger.Error("failed to save history", "err", firstErr)
		api.respondError(w, http.StatusInternalServerError, "failed to save history")

		return
	}

	api.respondJSON(w, http.StatusOK, &messageResp{Message: "History saved successfully"})
}

func (api *API) clearHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := ctxstore.GetUserID(r.Context())
	if !ok {
		api.respondError(w, http.StatusUnauthorized, "no user in context")

		return
	}

	if err := api.conversions.ClearConversions(r.Context(), userID); err != nil {
		api.logger.Error("failed to clear history", "err", err)
		api.respondError(w, http.StatusInternalServerError, "failed to clear history")

		return
	}

	api.respondJSON(w, http.StatusOK, &messageResp{Message: "History cleared successfully"})
}
