package clients

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// isoMillis matches the ISO-8601 form browsers produce for dates.
const isoMillis = "2006-01-02T15:04:05.000Z"

type param struct {
	key   string
	value string
}

func paging(params []param, offset, limit int) []param {
	if offset != 0 {
		params = append(params, param{"offset", strconv.Itoa(offset)})
	}
	if limit != 0 {
		params = append(params, param{"limit", strconv.Itoa(limit)})
	}
	return params
}

// withQuery appends params in order, percent-encoding each value.
func withQuery(path string, params []param) string {
	if len(params) == 0 {
		return path
	}
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, p.key+"="+url.QueryEscape(p.value))
	}
	return path + "?" + strings.Join(parts, "&")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(isoMillis)
}

func joinIDs(ids []uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}
