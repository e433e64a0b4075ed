package utils

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
)

// PathParam returns a router path parameter with a trailing ".json" removed,
// so "/session/abc.json" and "/session/abc" name the same session.
func PathParam(r *http.Request, name string) string {
	return strings.TrimSuffix(httprouter.ParamsFromContext(r.Context()).ByName(name), ".json")
}

// ParseFloatParam retrieves a float64 value from the provided URL query parameters.
// If the key is not present it returns 0; an invalid value is recorded in fieldErrors.
func ParseFloatParam(params url.Values, key string, fieldErrors map[string][]string) (float64, map[string][]string) {
	if fieldErrors == nil {
		fieldErrors = make(map[string][]string)
	}

	val := params.Get(key)
	if val == "" {
		return 0, fieldErrors
	}

	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		fieldErrors[key] = append(fieldErrors[key], fmt.Sprintf("Invalid field value for field %q.", key))
	}
	return f, fieldErrors
}

// ParseIntParam works like ParseFloatParam but for integers. The boolean
// reports whether the key was present and valid.
func ParseIntParam(params url.Values, key string, fieldErrors map[string][]string) (int, bool, map[string][]string) {
	if fieldErrors == nil {
		fieldErrors = make(map[string][]string)
	}

	val := params.Get(key)
	if val == "" {
		return 0, false, fieldErrors
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		fieldErrors[key] = append(fieldErrors[key], fmt.Sprintf("Invalid field value for field %q.", key))
		return 0, false, fieldErrors
	}
	return n, true, fieldErrors
}
