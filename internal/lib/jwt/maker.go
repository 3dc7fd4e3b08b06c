// Package jwt реализует генерацию и парсинг JWT токенов сессии администратора.
//
// Maker определяет интерфейс для создания и проверки токенов; MakerImpl —
// реализация с секретным ключом и сроком жизни токена.
package jwt

import (
	"time"
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
//
// Токен привязан к сессии: идентификатор сессии записывается в jti,
// поэтому после выхода из системы старый токен перестаёт приниматься.
type Maker interface {
	// GenerateToken подписывает токен для сессии sessionID с email и ролью.
	GenerateToken(sessionID, email, role string) (string, time.Time, error)
	// ParseToken возвращает *CustomClaims, если подпись и срок действия корректны.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
	now       func() time.Time
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
		now:       time.Now,
	}
}
