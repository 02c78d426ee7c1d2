package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/egannguyen/go-commerce-api/internal/apperr"
	"github.com/egannguyen/go-commerce-api/internal/logging"
	"github.com/egannguyen/go-commerce-api/internal/service"
)

const invalidDataMessage = "The given data was invalid."

type messageResponse struct {
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

var errMalformedBody = errors.New("malformed JSON body")

// decodeJSON reads the request body into dst. An empty body leaves dst
// untouched so that validation reports the missing fields. A field of the
// wrong JSON type is reported as a validation error on that field.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) && te.Field != "" {
		verr := apperr.NewValidation()
		verr.Add(te.Field, typeMessage(te))
		return verr
	}
	return errors.Wrap(errMalformedBody, err.Error())
}

func typeMessage(te *json.UnmarshalTypeError) string {
	attr := strings.ReplaceAll(te.Field, "_", " ")
	want := "valid"
	switch te.Type.Kind() {
	case reflect.String:
		want = "a string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		want = "an integer"
	case reflect.Float32, reflect.Float64:
		want = "a number"
	case reflect.Slice, reflect.Array:
		want = "an array"
	case reflect.Map, reflect.Struct:
		want = "an object"
	case reflect.Bool:
		want = "true or false"
	}
	return fmt.Sprintf("The %s must be %s.", attr, want)
}

var notFoundMessages = map[string]string{
	"order":   "order not found.",
	"client":  "Client not found",
	"product": "Product not found.",
	"user":    "User not found.",
}

// writeError turns a service error into the JSON error body. Errors the
// caller cannot act on are logged and hidden behind a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *apperr.ValidationError
		nf *apperr.NotFoundError
		az *apperr.AuthorizationError
		an *apperr.AuthenticationError
		cf *apperr.ConflictError
	)
	status := apperr.StatusCode(err)
	switch {
	case errors.Is(err, errMalformedBody):
		writeMessage(w, http.StatusBadRequest, "Malformed JSON body.")
	case errors.As(err, &ve):
		writeJSON(w, status, messageResponse{Message: invalidDataMessage, Errors: ve.Fields})
	case errors.As(err, &nf):
		msg, ok := notFoundMessages[nf.Resource]
		if !ok {
			msg = "Not Found"
		}
		writeMessage(w, status, msg)
	case errors.As(err, &az):
		writeMessage(w, status, "Unauthorized")
	case errors.As(err, &an):
		writeMessage(w, status, "Unauthenticated.")
	case errors.As(err, &cf):
		writeMessage(w, status, cf.Message)
	default:
		logging.FromContext(r.Context()).WithError(err).Error("Request failed")
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

// writeFormError answers validation failures with 200 and a bare errors
// body; other failures go through writeError.
func writeFormError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusOK, messageResponse{Errors: ve.Fields})
		return
	}
	writeError(w, r, err)
}

func pageQuery(r *http.Request) service.PageQuery {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	take, _ := strconv.Atoi(q.Get("take"))
	return service.PageQuery{Page: page, Take: take}
}
