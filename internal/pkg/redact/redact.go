// redact маскирует чувствительные значения перед записью в лог.
package redact

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Email оставляет первые две руны локальной части и домен: "fo***@example.com".
func Email(s string) string {
	local, domain, ok := strings.Cut(s, "@")
	if !ok || strings.Contains(domain, "@") {
		return "***"
	}

	r := []rune(local)
	if len(r) > 2 {
		return string(r[:2]) + "***@" + domain
	}

	return "***@" + domain
}

// Token возвращает короткий отпечаток токена: по нему можно сопоставить
// записи лога, но нельзя восстановить сам токен.
func Token(tok string) string {
	if tok == "" {
		return "[EMPTY_TOKEN]"
	}

	return "tok:" + strconv.FormatUint(xxhash.Sum64String(tok)&0xffffffff, 16)
}

func Password() string { return "[REDACTED_PASSWORD]" }
