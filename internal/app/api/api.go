package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"app/db"
	"app/pkg/auth"
)

type Config struct {
	Port    int           `yaml:"port"`
	Timeout time.Duration `yaml:"timeout"`
}

type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*db.User, error)
	GetUserByUsername(ctx context.Context, username string) (*db.User, error)
	GetUserByID(ctx context.Context, id int) (*db.User, error)
}

type ConversionStore interface {
	AddConversion(ctx context.Context, userID int, text, audioURL string) error
	GetConversions(ctx context.Context, userID int) ([]db.Conversion, error)
	ClearConversions(ctx context.Context, userID int) error
}

type SynthesisGateway interface {
	Submit(ctx context.Context, text string) (string, error)
}

type API struct {
	logger *slog.Logger

	cfg *Config

	auth *auth.Service

	users       UserStore
	conversions ConversionStore

	gateway SynthesisGateway
}

func NewAPI(cfg *Config, logger *slog.Logger, authService *auth.Service,
	users UserStore, conversions ConversionStore, gateway SynthesisGateway) *API {
	return &API{
		cfg: cfg,

		logger: logger,

		auth: authService,

		users:       users,
		conversions: conversions,

		gateway: gateway,
	}
}

type errResp struct {
	Error string `json:"error"`
}

func (api *API) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		api.logger.Error("failed to encode response", "err", err)
	}
}

func (api *API) respondError(w http.ResponseWriter, status int, msg string) {
	api.respondJSON(w, status, &errResp{Error: msg})
}
