package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type contextKey string

// callerIDKey — ключ контекста для идентичности вызывающего
const callerIDKey contextKey = "caller_id"

// RequestLogger — middleware для логирования HTTP-запросов
func RequestLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Оборачиваем ResponseWriter, чтобы знать статус
			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.statusCode,
				"duration_ms", duration.Milliseconds(),
			)
		})
	}
}

// Authenticate — middleware границы с внешним коллаборатором аутентификации:
// идентичность вызывающего приходит в заголовке X-User-ID (ее резолвит
// вышестоящий шлюз). Отсутствие идентичности — отказ до старта пайплайна
func Authenticate(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("X-User-ID")
			if raw == "" {
				logger.Warn("request without caller identity", "path", r.URL.Path)
				respondWithError(w, http.StatusUnauthorized, "Отсутствует идентичность вызывающего", logger)
				return
			}

			callerID, err := uuid.Parse(raw)
			if err != nil {
				logger.Warn("malformed caller identity", "path", r.URL.Path, "error", err)
				respondWithError(w, http.StatusUnauthorized, "Некорректная идентичность вызывающего", logger)
				return
			}

			ctx := context.WithValue(r.Context(), callerIDKey, callerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CallerID достает идентичность вызывающего из контекста запроса
func CallerID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(callerIDKey).(uuid.UUID)
	return id, ok
}

// responseWriter нужен, чтобы перехватывать код ответа
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
