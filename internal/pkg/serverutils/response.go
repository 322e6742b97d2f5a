package serverutils

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func FailedResponse(message string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
	}
}

var validate = validator.New()

// ValidateRequest checks struct validate tags and converts the first
// failure into a 400 with a readable message.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		first := verrs[0]
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("field '%s' failed on '%s' rule", first.Field(), first.Tag()))
	}
	return fiber.NewError(fiber.StatusBadRequest, "invalid request payload")
}
