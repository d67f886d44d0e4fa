// file: internals/features/payment/gateway/http.go
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultHTTPTimeout untuk panggilan keluar ke provider.
const DefaultHTTPTimeout = 30 * time.Second

func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: DefaultHTTPTimeout}
}

// DoJSON kirim request JSON ke provider dan decode response body
// sebagai map. Error transport / decode dikembalikan sebagai error —
// adapter WAJIB mengubahnya jadi result failed di boundary-nya,
// tidak boleh bocor ke caller.
func DoJSON(ctx context.Context, client *http.Client, method, url string, headers map[string]string, body any) (map[string]any, int, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, resp.StatusCode, err
	}

	out := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return out, resp.StatusCode, nil
}

/* =========================================================
   Accessor payload longgar (provider suka ganti2 tipe field)
========================================================= */

// Str membaca field string dari map; angka di-stringify.
func Str(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return trimFloat(v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// Num membaca field numerik; string angka ikut diterima.
func Num(m map[string]any, key string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		var f float64
		if _, err := fmt.Sscanf(v, "%g", &f); err == nil {
			return f, true
		}
	}
	return 0, false
}

// Child membaca sub-object; nil kalau bukan object.
func Child(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return nil
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%f", v)
	// buang trailing zero ala stringify angka bulat
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}

// ParseTime mencoba beberapa layout timestamp umum dari provider.
func ParseTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.000Z",
		"2006-01-02 15:04:05",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, value); err == nil {
			return &t
		}
	}
	return nil
}
