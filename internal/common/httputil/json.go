// Package httputil 은 JSON 요청/응답 헬퍼를 제공한다.
package httputil

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
)

// HTTP 헤더 관련 상수
const (
	// ContentTypeJSON: JSON 응답을 위한 Content-Type 헤더 값
	ContentTypeJSON = "application/json"
	// HeaderContentType: Content-Type 헤더 이름
	HeaderContentType = "Content-Type"
)

var (
	// ErrEmptyBody: 요청 바디가 비어있을 때 발생하는 에러
	ErrEmptyBody = errors.New("empty request body")
	// ErrBodyTooLarge: 요청 바디가 허용 크기를 넘을 때 발생하는 에러
	ErrBodyTooLarge = errors.New("request body too large")
)

// ReadJSON: HTTP 요청 바디에서 JSON을 읽어 대상 구조체로 디코딩한다.
// 알 수 없는 필드는 거부하고, maxBytes 를 넘는 바디는 ErrBodyTooLarge 로 거부한다.
func ReadJSON(r *http.Request, out any, maxBytes int64) error {
	if r.Body == nil || r.Body == http.NoBody {
		return ErrEmptyBody
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBytes+1))
	if err != nil {
		return fmt.Errorf("read body failed: %w", err)
	}
	if int64(len(raw)) > maxBytes {
		return ErrBodyTooLarge
	}
	if strings.TrimSpace(string(raw)) == "" {
		return ErrEmptyBody
	}

	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode json failed: %w", err)
	}
	return nil
}

// WriteJSON: 데이터를 JSON으로 인코딩하여 HTTP 응답으로 전송한다.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set(HeaderContentType, ContentTypeJSON)
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json failed: %w", err)
	}
	return nil
}

// ErrorResponse: 표준 에러 응답 구조체
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// WriteErrorJSON: 에러 코드와 메시지를 포함한 표준 에러 응답을 전송한다.
func WriteErrorJSON(w http.ResponseWriter, status int, code string, message string) error {
	return WriteJSON(w, status, ErrorResponse{
		Error:   strings.TrimSpace(code),
		Message: strings.TrimSpace(message),
	})
}

// WriteFieldErrorJSON: 문제가 된 필드 이름까지 포함한 에러 응답을 전송한다.
func WriteFieldErrorJSON(w http.ResponseWriter, status int, code string, message string, field string) error {
	return WriteJSON(w, status, ErrorResponse{
		Error:   strings.TrimSpace(code),
		Message: strings.TrimSpace(message),
		Field:   strings.TrimSpace(field),
	})
}
