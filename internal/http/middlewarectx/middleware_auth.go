// Package middlewarectx содержит HTTP middleware для проверки токена сессии
// администратора, проверки роли и ограничения частоты запросов.
//
// JWTMiddleware берёт токен из заголовка Authorization или, для GET-запросов
// потоковых эндпоинтов, из параметра access_token, проверяет его через
// сервис сессий и кладёт в контекст данные сессии.
//
// В случае ошибки проверки возвращает HTTP 401 Unauthorized с сообщением об ошибке.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/lendlens/internal/http/response"
	"github.com/magabrotheeeer/lendlens/internal/lib/sl"
	"github.com/magabrotheeeer/lendlens/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// SessionID — ключ идентификатора сессии в контексте
	SessionID Key = "session_id"
	// Email — ключ электронной почты администратора в контексте
	Email Key = "email"
	// Role — ключ для роли пользователя в контексте
	Role Key = "role"
)

// Service описывает интерфейс сервиса для проверки токена сессии.
type Service interface {
	Authorize(token string) (models.Session, error)
}

// JWTMiddleware возвращает HTTP middleware, который проверяет токен сессии.
//
// Если токен принадлежит текущей сессии, добавляет её данные в контекст запроса,
// иначе возвращает ошибку с HTTP статусом 401 Unauthorized.
func JWTMiddleware(sessions Service, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			tokenStr, ok := bearerToken(r)
			if !ok {
				log.Warn("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}

			session, err := sessions.Authorize(tokenStr)
			if err != nil {
				log.Warn("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}
			ctx := context.WithValue(r.Context(), SessionID, session.ID)
			ctx = context.WithValue(ctx, Email, session.Email)
			ctx = context.WithValue(ctx, Role, session.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return "", false
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		return token, token != ""
	}
	if r.Method == http.MethodGet {
		if token := r.URL.Query().Get("access_token"); token != "" {
			return token, true
		}
	}
	return "", false
}

// RequireRole пропускает только запросы, в контексте которых есть роль role.
func RequireRole(log *slog.Logger, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, _ := r.Context().Value(Role).(string)
			if got != role {
				log.Warn("access denied",
					slog.String("op", "middlewarectx.RequireRole"),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.String("role", got))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("access denied"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
