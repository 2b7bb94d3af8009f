package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error представляет кастомную ошибку с дополнительной информацией
type Error struct {
	Code    ErrorCode       `json:"code"`
	Message string          `json:"message"`
	Details string          `json:"details,omitempty"`
	Cause   error           `json:"-"`
	Context context.Context `json:"-"`
}

// ErrorCode представляет код ошибки
type ErrorCode string

// Определение кодов ошибок движка обслуживания
const (
	// Ошибки валидации, возвращаются вызывающему без повтора
	ErrInvalidDate      ErrorCode = "INVALID_DATE"
	ErrUnknownEquipment ErrorCode = "UNKNOWN_EQUIPMENT"
	ErrValidation       ErrorCode = "VALIDATION_ERROR"

	// Ошибки состояния жизненного цикла
	ErrAlreadyTerminal ErrorCode = "ALREADY_TERMINAL"
	ErrAlreadyResolved ErrorCode = "ALREADY_RESOLVED"

	// Конфликты конкурентного доступа, повтор решает вызывающий
	ErrConcurrentModification ErrorCode = "CONCURRENT_MODIFICATION"
	ErrConflict               ErrorCode = "CONFLICT"

	// Ошибки внешних коллабораторов, повторяемые
	ErrUpstreamTimeout     ErrorCode = "UPSTREAM_TIMEOUT"
	ErrUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE"

	// Общие коды
	ErrNotFound ErrorCode = "NOT_FOUND"
	ErrInternal ErrorCode = "INTERNAL_ERROR"
)

// Error возвращает сообщение об ошибке
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap возвращает причину ошибки
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is проверяет, является ли ошибка указанного типа
func (e *Error) Is(target error) bool {
	if targetError, ok := target.(*Error); ok {
		return e.Code == targetError.Code
	}
	return false
}

// New создает новую кастомную ошибку
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap оборачивает существующую ошибку в кастомную
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WithDetails добавляет детали к ошибке
func (e *Error) WithDetails(details string) *Error {
	if e == nil {
		return nil
	}
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
		Context: e.Context,
	}
}

// WithContext добавляет контекст к ошибке
func (e *Error) WithContext(ctx context.Context) *Error {
	if e == nil {
		return nil
	}
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   e.Cause,
		Context: ctx,
	}
}

// CodeOf возвращает код ошибки или ErrInternal для неизвестных ошибок
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if customErr, ok := err.(*Error); ok {
		return customErr.Code
	}
	return ErrInternal
}

// IsRetryable сообщает, имеет ли смысл повторять операцию
func IsRetryable(err error) bool {
	switch CodeOf(err) {
	case ErrUpstreamTimeout, ErrUpstreamUnavailable, ErrConcurrentModification:
		return true
	default:
		return false
	}
}

// ToGRPCErr переводит кастомную ошибку в gRPC статус
func (e *Error) ToGRPCErr() error {
	if e == nil {
		return nil
	}

	// Преобразуем код ошибки в gRPC код
	var grpcCode codes.Code
	switch e.Code {
	case ErrNotFound, ErrUnknownEquipment:
		grpcCode = codes.NotFound
	case ErrValidation, ErrInvalidDate:
		grpcCode = codes.InvalidArgument
	case ErrAlreadyTerminal, ErrAlreadyResolved:
		grpcCode = codes.FailedPrecondition
	case ErrConcurrentModification:
		grpcCode = codes.Aborted
	case ErrConflict:
		grpcCode = codes.AlreadyExists
	case ErrUpstreamTimeout:
		grpcCode = codes.DeadlineExceeded
	case ErrUpstreamUnavailable:
		grpcCode = codes.Unavailable
	case ErrInternal:
		grpcCode = codes.Internal
	default:
		grpcCode = codes.Unknown
	}

	return status.Error(grpcCode, e.Message)
}

// FromGRPCErr преобразует gRPC ошибку в кастомную ошибку
func FromGRPCErr(err error) *Error {
	if err == nil {
		return nil
	}

	// Проверяем, является ли ошибка gRPC статусом
	if grpcStatus, ok := status.FromError(err); ok {
		var code ErrorCode
		switch grpcStatus.Code() {
		case codes.NotFound:
			code = ErrNotFound
		case codes.InvalidArgument:
			code = ErrValidation
		case codes.FailedPrecondition:
			code = ErrAlreadyTerminal
		case codes.Aborted:
			code = ErrConcurrentModification
		case codes.AlreadyExists:
			code = ErrConflict
		case codes.DeadlineExceeded:
			code = ErrUpstreamTimeout
		case codes.Unavailable:
			code = ErrUpstreamUnavailable
		default:
			code = ErrInternal
		}

		return &Error{
			Code:    code,
			Message: grpcStatus.Message(),
		}
	}

	// Если это не gRPC ошибка, оборачиваем как внутреннюю ошибку
	return Wrap(err, ErrInternal, "internal error")
}

// HTTPStatus возвращает соответствующий HTTP статус для ошибки
func (e *Error) HTTPStatus() int {
	if e == nil {
		return http.StatusOK
	}

	switch e.Code {
	case ErrNotFound, ErrUnknownEquipment:
		return http.StatusNotFound
	case ErrValidation, ErrInvalidDate:
		return http.StatusBadRequest
	case ErrAlreadyTerminal, ErrAlreadyResolved, ErrConflict, ErrConcurrentModification:
		return http.StatusConflict
	case ErrUpstreamTimeout:
		return http.StatusGatewayTimeout
	case ErrUpstreamUnavailable:
		return http.StatusBadGateway
	case ErrInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// GetUserMessage возвращает пользовательское сообщение об ошибке
func (e *Error) GetUserMessage() string {
	if e == nil {
		return ""
	}

	// Возвращаем сообщения на русском по умолчанию
	switch e.Code {
	case ErrNotFound:
		return "Ресурс не найден"
	case ErrUnknownEquipment:
		return "Оборудование не найдено"
	case ErrValidation:
		return "Ошибка валидации данных"
	case ErrInvalidDate:
		return "Недопустимая дата"
	case ErrAlreadyTerminal:
		return "Задача уже завершена или отменена"
	case ErrAlreadyResolved:
		return "Инцидент уже разрешен"
	case ErrConcurrentModification:
		return "Запись изменена параллельно, повторите операцию"
	case ErrUpstreamTimeout:
		return "Внешний сервис не ответил вовремя"
	case ErrUpstreamUnavailable:
		return "Внешний сервис недоступен"
	case ErrConflict:
		return "Конфликт данных (например, дубликат)"
	case ErrInternal:
		return "Внутренняя ошибка сервера"
	default:
		return "Произошла ошибка"
	}
}

// errorContextKey ключ контекста для передачи ошибки через HTTP middleware
type errorContextKey struct{}

// responseWriter обертка для перехвата статуса ответа
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader перехватывает статус ответа
func (w *responseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// Middleware обрабатывает ошибки в HTTP запросах
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Создаем обертку для ResponseWriter для перехвата статуса
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		// Выполняем следующий обработчик с восстановлением от паники
		defer func() {
			if recovered := recover(); recovered != nil {
				err := New(ErrInternal, "Internal server error").
					WithDetails(fmt.Sprintf("panic: %v", recovered))

				sendErrorResponse(w, err)
			}
		}()

		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode < 400 {
			return
		}

		// Если есть ошибка в контексте, используем ее
		if err, ok := r.Context().Value(errorContextKey{}).(*Error); ok {
			sendErrorResponse(w, err)
		}
	})
}

// sendErrorResponse отправляет JSON ответ с ошибкой
func sendErrorResponse(w http.ResponseWriter, err *Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus())

	// Внутренние детали и причины не пересекают границу сервиса
	response := map[string]interface{}{
		"error": map[string]interface{}{
			"code":    err.Code,
			"message": err.GetUserMessage(),
		},
	}

	json.NewEncoder(w).Encode(response)
}
