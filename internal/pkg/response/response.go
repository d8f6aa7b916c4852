package response

import (
	"github.com/gofiber/fiber/v2"
)

// SuccessBody is the envelope for /api/v1 successes.
type SuccessBody struct {
	Status   string      `json:"status"`
	Message  string      `json:"message"`
	Data     interface{} `json:"data"`
	Metadata interface{} `json:"metadata,omitempty"`
}

// ErrorBody is the envelope for /api/v1 errors.
type ErrorBody struct {
	Status string      `json:"status"`
	Error  ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Message    string      `json:"message"`
	StatusCode int         `json:"statusCode"`
	Details    interface{} `json:"details,omitempty"`
}

// FunctionSuccessBody and FunctionErrorBody are the flat bodies edge-function
// callers read: {"success":true,"message":...} or {"error":...}.
type FunctionSuccessBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type FunctionErrorBody struct {
	Error string `json:"error"`
}

const (
	statusSuccess = "success"
	statusError   = "error"
)

func Success(c *fiber.Ctx, message string, data interface{}, metadata interface{}) error {
	return success(c, fiber.StatusOK, message, data, metadata)
}

// SuccessCreated answers 201 for requests that created a record, such as a credit grant.
func SuccessCreated(c *fiber.Ctx, message string, data interface{}, metadata interface{}) error {
	return success(c, fiber.StatusCreated, message, data, metadata)
}

func success(c *fiber.Ctx, status int, message string, data interface{}, metadata interface{}) error {
	if metadata == nil {
		metadata = fiber.Map{}
	}
	return c.Status(status).JSON(SuccessBody{
		Status:   statusSuccess,
		Message:  message,
		Data:     data,
		Metadata: metadata,
	})
}

func Error(c *fiber.Ctx, message string, statusCode int, details interface{}) error {
	if details == nil {
		details = fiber.Map{}
	}
	return c.Status(statusCode).JSON(ErrorBody{
		Status: statusError,
		Error: ErrorDetail{
			Message:    message,
			StatusCode: statusCode,
			Details:    details,
		},
	})
}

// Unauthorized sends 401 in the error envelope.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusUnauthorized, nil)
}

// FunctionSuccess sends 200 with the flat success body.
func FunctionSuccess(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusOK).JSON(FunctionSuccessBody{Success: true, Message: message})
}

// FunctionError sends the flat error body with the given status.
func FunctionError(c *fiber.Ctx, message string, statusCode int) error {
	return c.Status(statusCode).JSON(FunctionErrorBody{Error: message})
}
