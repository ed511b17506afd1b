package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	cerrors "github.com/park285/spycard-go/internal/common/errors"
	commonhttputil "github.com/park285/spycard-go/internal/common/httputil"
	"github.com/park285/spycard-go/internal/common/messageprovider"
	serrors "github.com/park285/spycard-go/internal/spycard/errors"
	smessages "github.com/park285/spycard-go/internal/spycard/messages"
)

// API 에러 코드
const (
	errorCodeInvalidRequest = "INVALID_REQUEST"
	errorCodeInvalidPath    = "INVALID_PATH"
	errorCodeBodyTooLarge   = "BODY_TOO_LARGE"
	errorCodeNotFound       = "NOT_FOUND"
	errorCodeValidation     = "VALIDATION_FAILED"
	errorCodeLocked         = "LOCKED"
	errorCodeUpstream       = "UPSTREAM_FAILED"
	errorCodeInternal       = "INTERNAL_ERROR"
)

const healthCheckTimeout = 2 * time.Second

func respondJSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	if err := commonhttputil.WriteJSON(w, status, data); err != nil {
		logger.Warn("response_write_failed", "err", err)
	}
}

func respondError(w http.ResponseWriter, status int, code string, message string, logger *slog.Logger) {
	if err := commonhttputil.WriteErrorJSON(w, status, code, message); err != nil {
		logger.Warn("response_write_failed", "err", err)
	}
}

func respondFieldError(w http.ResponseWriter, status int, code string, message string, field string, logger *slog.Logger) {
	if err := commonhttputil.WriteFieldErrorJSON(w, status, code, message, field); err != nil {
		logger.Warn("response_write_failed", "err", err)
	}
}

// readBody: 요청 바디를 out 으로 디코딩한다. 실패하면 400/413 을 쓰고 false 를 반환한다.
func readBody(w http.ResponseWriter, r *http.Request, deps Deps, out any, event string) bool {
	err := commonhttputil.ReadJSON(r, out, deps.MaxBodyBytes)
	if err == nil {
		return true
	}
	deps.Logger.Debug(event+"_PARSE_FAILED", "err", err)
	if errors.Is(err, commonhttputil.ErrBodyTooLarge) {
		respondError(w, http.StatusRequestEntityTooLarge, errorCodeBodyTooLarge,
			deps.Messages.Get(smessages.ErrorInvalidRequest), deps.Logger)
		return false
	}
	respondError(w, http.StatusBadRequest, errorCodeInvalidRequest,
		deps.Messages.Get(smessages.ErrorInvalidRequest), deps.Logger)
	return false
}

// respondServiceError: 서비스 에러를 HTTP 상태로 옮긴다.
// NotFound 404, Validation 400, Lock 409, Upstream 502, 나머지 500.
func respondServiceError(w http.ResponseWriter, deps Deps, event string, err error, duration int64) {
	var (
		notFound   serrors.NotFoundError
		validation serrors.ValidationError
		lockErr    cerrors.LockError
		upstream   serrors.UpstreamError
	)
	switch {
	case errors.As(err, &validation):
		deps.Logger.Info(event+"_REJECTED", "field", validation.Field, "reason", validation.Reason, "duration", duration)
		respondFieldError(w, http.StatusBadRequest, errorCodeValidation,
			deps.Messages.Get(smessages.ErrorValidation,
				messageprovider.P("field", validation.Field),
				messageprovider.P("reason", validation.Reason),
			), validation.Field, deps.Logger)
	case errors.As(err, &notFound):
		deps.Logger.Info(event+"_NOT_FOUND", "resource", notFound.Resource, "id", notFound.ID, "duration", duration)
		respondError(w, http.StatusNotFound, errorCodeNotFound,
			deps.Messages.Get(smessages.ErrorNotFound, messageprovider.P("resource", notFound.Resource)), deps.Logger)
	case errors.As(err, &lockErr):
		deps.Logger.Warn(event+"_LOCKED", "key", lockErr.Key, "duration", duration)
		respondError(w, http.StatusConflict, errorCodeLocked, deps.Messages.Get(smessages.ErrorLock), deps.Logger)
	case errors.As(err, &upstream):
		deps.Logger.Error(event+"_UPSTREAM_FAILED", "operation", upstream.Operation, "err", errors.Unwrap(upstream), "duration", duration)
		respondError(w, http.StatusBadGateway, errorCodeUpstream, deps.Messages.Get(smessages.ErrorUpstream), deps.Logger)
	case cerrors.IsInfrastructure(err):
		deps.Logger.Error(event+"_STORAGE_FAILED", "err", err, "duration", duration)
		respondError(w, http.StatusInternalServerError, errorCodeInternal, deps.Messages.Get(smessages.ErrorInternal), deps.Logger)
	default:
		deps.Logger.Error(event+"_FAILED", "err", err, "duration", duration)
		respondError(w, http.StatusInternalServerError, errorCodeInternal, deps.Messages.Get(smessages.ErrorInternal), deps.Logger)
	}
}
