package shared

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// validate is the process-wide struct validator. Building one is not
// cheap, so every handler shares this instance.
var validate = validator.New()

// selfValidator is implemented by request types whose rules cannot be
// expressed as struct tags, such as cross-field payload checks.
type selfValidator interface {
	Validate() error
}

// DecodeJSON reads the request body into v.
func DecodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// ValidateRequest checks v against its validation tags. A type that
// implements selfValidator runs its own checks instead.
func ValidateRequest(v any) error {
	if sv, ok := v.(selfValidator); ok {
		return sv.Validate()
	}
	return validate.Struct(v)
}
