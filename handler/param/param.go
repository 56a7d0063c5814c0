package param

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/asaskevich/govalidator"
)

var errEmptyBody = errors.New("request body is empty")

// Binding decode the json body of r into v and validate it with the struct's valid tags
func Binding(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errEmptyBody
	}

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}

		return err
	}

	if _, err := govalidator.ValidateStruct(v); err != nil {
		return err
	}

	return nil
}
