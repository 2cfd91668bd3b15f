package validators

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/rtavara/mercafresh-backend/pkg/errors"
)

// ParseDateQuery parses an optional YYYY-MM-DD query value as a UTC day
// boundary. A missing value yields nil.
func ParseDateQuery(r *http.Request, name string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s must be a YYYY-MM-DD date", name))
	}
	return &t, nil
}

// ParseIntQuery parses an optional non-negative integer query value. A
// missing value yields 0.
func ParseIntQuery(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s must be a non-negative integer", name))
	}
	return value, nil
}
