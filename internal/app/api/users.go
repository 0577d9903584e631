package api

import (
	"encoding/json"
	"net/http"

	"app/db"
	"app/pkg/auth"
	"app/pkg/ctxstore"
)

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type messageResp struct {
	Message string `json:"message"`
}

func (api *API) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.respondError(w, http.StatusBadRequest, "invalid request body")

		return
	}

	if req.Username == "" || req.Password == "" {
		api.respondError(w, http.StatusBadRequest, "username and password are required")

		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		api.logger.Error("failed to hash password", "err", err)
		api.respondError(w, http.StatusInternalServerError, "failed to register user")

		return
	}

	if _, err := api.users.CreateUser(r.Context(), req.Username, passwordHash); err != nil {
		if db.ErrCode(err) == db.ErrCodeUniqueViolation {
			api.respondError(w, http.StatusInternalServerError, "username already exists")

			return
		}

		api.logger.Error("failed to create user", "err", err)
		api.respondError(w, http.StatusInternalServerError, "failed to register user")

		return
	}

	api.respondJSON(w, http.StatusCreated, &messageResp{Message: "User registered successfully!"})
}

type loginResp struct {
	Token string `json:"token"`
}

func (api *API) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.respondError(w, http.StatusBadRequest, "invalid request body")

		return
	}

	user, err := api.users.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if db.ErrCode(err) == db.ErrCodeNoRows {
			api.respondError(w, http.StatusUnauthorized, "invalid username or password")

			return
		}

		api.logger.Error("failed to get user", "err", err)
		api.respondError(w, http.StatusInternalServerError, "failed to login user")

		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		api.respondError(w, http.StatusUnauthorized, "invalid username or password")

		return
	}

	token, err := api.auth.IssueToken(user.ID)
	if err != nil {
		api.logger.Error("failed to issue token", "err", err)
		api.respondError(w, http.StatusInternalServerError, "failed to login user")

		return
	}

	api.respondJSON(w, http.StatusOK, &loginResp{Token: token})
}

type userResp struct {
	Username string `json:"username"`
}

func (api *API) user(w http.ResponseWriter, r *http.Request) {
	userID, ok := ctxstore.GetUserID(r.Context())
	if !ok {
		api.respondError(w, http.StatusUnauthorized, "no user in context")

		return
	}

	user, err := api.users.GetUserByID(r.Context(), userID)
	if err != nil {
		api.logger.Error("failed to get user", "err", err)
		api.respondError(w, http.StatusInternalServerError, "failed to retrieve user information")

		return
	}

	api.respondJSON(w, http.StatusOK, &userResp{Username: user.Username})
}

func (api *API) protected(w http.ResponseWriter, r *http.Request) {
	api.respondJSON(w, http.StatusOK, &messageResp{Message: "This is a protected route"})
}
