package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
)

type contextKey int

const requestIDKey contextKey = 0

// AddRequestID is a handler that tags every request with a random id
func AddRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 8)
		if _, err := rand.Read(buf); err == nil {
			ctx := context.WithValue(r.Context(), requestIDKey, hex.EncodeToString(buf))
			r = r.WithContext(ctx)
		}

		next.ServeHTTP(w, r)
	})
}

// GetReqID returns the request id from the context, if any
func GetReqID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
