// file: internals/helpers/response_test.go
package helper

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccessEnvelope(t *testing.T) {
	status, body := doRequest(t, func(c *fiber.Ctx) error {
		return Success(c, "Payment verification result", fiber.Map{"reference": "PAY-X"})
	}, "/t")

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, float64(fiber.StatusOK), body["code"])
	assert.Equal(t, "Payment verification result", body["message"])
}

func TestValidationErrorEnvelope(t *testing.T) {
	type payload struct {
		Amount float64 `validate:"required,gt=0"`
	}
	err := validator.New().Struct(&payload{})
	require.Error(t, err)

	status, body := doRequest(t, func(c *fiber.Ctx) error {
		return ValidationError(c, err)
	}, "/t")

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "Validasi gagal", body["message"])
	assert.NotEmpty(t, body["errors"])
}

// input selain validator.ValidationErrors jatuh ke Error biasa
func TestValidationErrorNonValidatorInput(t *testing.T) {
	status, body := doRequest(t, func(c *fiber.Ctx) error {
		return ValidationError(c, fiber.ErrBadRequest)
	}, "/t")

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "Invalid input", body["message"])
}
