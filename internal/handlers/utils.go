package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/online-social/apiserver/types"
)

// maxBodyBytes bounds request bodies. Uploads arrive base64 encoded in JSON.
const maxBodyBytes = 16 << 20

type contextKey string

const (
	contextUserKey    contextKey = "user"
	contextSessionKey contextKey = "session"
)

func withIdentity(ctx context.Context, user types.User, session types.Session) context.Context {
	ctx = context.WithValue(ctx, contextUserKey, user)
	return context.WithValue(ctx, contextSessionKey, session)
}

// userFromContext returns the authenticated user, if any.
func userFromContext(ctx context.Context) (types.User, bool) {
	user, ok := ctx.Value(contextUserKey).(types.User)
	return user, ok
}

func sessionFromContext(ctx context.Context) (types.Session, bool) {
	session, ok := ctx.Value(contextSessionKey).(types.Session)
	return session, ok
}

var errBodyTooLarge = errors.New("request body too large")

// decodeBody reads a JSON body into a T. Bodies sent with
// "Content-Transfer-Encoding: base64" are decoded first. Missing or unparseable
// bodies yield the zero T, as if the client had sent an empty object. In a
// parseable body, fields of the wrong type are skipped and the rest are kept.
// Only an oversized body is reported.
func decodeBody[T any](w http.ResponseWriter, r *http.Request) (T, error) {
	var zero T
	if r.Body == nil {
		return zero, nil
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return zero, errBodyTooLarge
		}
		return zero, nil
	}

	if strings.EqualFold(strings.TrimSpace(r.Header.Get("Content-Transfer-Encoding")), "base64") {
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
		if err != nil {
			return zero, nil
		}
		data = decoded
	}

	if !json.Valid(data) {
		return zero, nil
	}
	var value T
	// Type mismatches leave the offending field unset; Unmarshal still fills
	// every other field.
	_ = json.Unmarshal(data, &value)
	return value, nil
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// OKResponse acknowledges a request that has nothing else to return.
type OKResponse struct {
	OK bool `json:"ok"`
}

// IDResponse carries the identifier of a created resource.
type IDResponse struct {
	ID string `json:"id"`
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

// NotFound answers requests that match no route.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "Маршрут не найден")
}

// Preflight answers OPTIONS requests that are not CORS preflights.
func Preflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
