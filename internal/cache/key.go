package cache

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Key возвращает ключ вида "<prefix>:<name>:<hash>".
// hash считается по пути, query-параметрам и subject (если он задан).
// Порядок параметров и их повторяющихся значений на ключ не влияет.
func Key(prefix, name, path string, query url.Values, subject string) string {
	d := xxhash.New()
	_, _ = d.WriteString(path)
	_, _ = d.WriteString("?")
	_, _ = d.WriteString(canonicalQuery(query))
	if subject != "" {
		_, _ = d.WriteString("#")
		_, _ = d.WriteString(subject)
	}

	return prefix + ":" + name + ":" + strconv.FormatUint(d.Sum64(), 16)
}

func canonicalQuery(q url.Values) string {
	if len(q) == 0 {
		return ""
	}

	sorted := make(url.Values, len(q))
	for k, vs := range q {
		vs = slices.Clone(vs)
		slices.Sort(vs)
		sorted[k] = vs
	}

	// Encode сортирует ключи.
	return sorted.Encode()
}

// ETag возвращает слабый ETag тела ответа: W/"<hex>".
func ETag(body []byte) string {
	var b strings.Builder
	b.WriteString(`W/"`)
	b.WriteString(strconv.FormatUint(xxhash.Sum64(body), 16))
	b.WriteString(`"`)
	return b.String()
}
