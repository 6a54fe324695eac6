package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/vedran77/linkup/internal/logging"
	"github.com/vedran77/linkup/internal/service"
	"github.com/vedran77/linkup/pkg/validator"
)

const maxBodyBytes = 1 << 20

type envelope struct {
	Success bool      `json:"success"`
	Message string    `json:"message,omitempty"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string                     `json:"code"`
	Message string                     `json:"message"`
	Fields  validator.ValidationErrors `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, envelope{Error: &apiError{Code: code, Message: message}})
}

func writeValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	writeJSON(w, http.StatusBadRequest, envelope{Error: &apiError{
		Code:    "VALIDATION_ERROR",
		Message: "Validation error",
		Fields:  errs,
	}})
}

// decodeAndValidate reads a JSON body into v and runs its validate tags.
// It writes the error response itself and reports whether to continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return false
	}
	if errs := validator.Struct(v); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return false
	}
	return true
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

var kindStatus = map[service.Kind]int{
	service.KindValidation:   http.StatusBadRequest,
	service.KindNotFound:     http.StatusNotFound,
	service.KindConflict:     http.StatusConflict,
	service.KindForbidden:    http.StatusForbidden,
	service.KindUnauthorized: http.StatusUnauthorized,
}

type errorResponse struct {
	err     error
	code    string
	message string
}

var errorResponses = []errorResponse{
	{service.ErrInvalidAction, "INVALID_ACTION", `Action must be either "accept" or "decline"`},
	{service.ErrInvalidStatus, "INVALID_STATUS", "Status must be one of pending, accepted, blocked"},
	{service.ErrHashtagLimit, "HASHTAG_LIMIT", "Too many hashtags for your membership"},
	{service.ErrInvalidHashtags, "INVALID_HASHTAGS", "Some selected hashtags are invalid or inactive"},
	{service.ErrSearchTooShort, "SEARCH_TOO_SHORT", "Search query must be at least 2 characters long"},

	{service.ErrUserNotFound, "USER_NOT_FOUND", "User not found"},
	{service.ErrProfileNotFound, "PROFILE_NOT_FOUND", "Profile not found"},
	{service.ErrConnectionNotFound, "CONNECTION_NOT_FOUND", "Connection request not found"},

	{service.ErrSelfConnection, "SELF_CONNECTION", "You cannot send a connection request to yourself"},
	{service.ErrEmailTaken, "EMAIL_TAKEN", "User with this email already exists"},
	{service.ErrAlreadyConnected, "ALREADY_CONNECTED", "You are already connected with this user"},
	{service.ErrConnectionBlocked, "CONNECTION_BLOCKED", "Cannot send connection request"},
	{service.ErrRequestExists, "REQUEST_EXISTS", "Connection request already exists"},
	{service.ErrAlreadyProcessed, "ALREADY_PROCESSED", "Connection request has already been processed"},

	{service.ErrProfilePrivate, "PROFILE_PRIVATE", "This profile is private"},

	{service.ErrInvalidCreds, "INVALID_CREDENTIALS", "Invalid email or password"},
	{service.ErrAccountDeactivated, "ACCOUNT_DEACTIVATED", "Account has been deactivated"},
	{service.ErrInvalidToken, "UNAUTHORIZED", "Invalid or expired token"},
}

// statusFor returns the HTTP status for a classified service error.
func statusFor(err error) int {
	if status, ok := kindStatus[service.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// writeServiceError maps a service error to its response. The status comes
// from the error's kind; transient errors are logged and hidden behind a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logging.FromContext(r.Context()).Error(op, "error", err)
		writeError(w, status, "INTERNAL", "Something went wrong")
		return
	}

	code, message := strings.ToUpper(service.KindOf(err).String()), err.Error()
	for _, e := range errorResponses {
		if errors.Is(err, e.err) {
			code, message = e.code, e.message
			break
		}
	}
	writeError(w, status, code, message)
}
