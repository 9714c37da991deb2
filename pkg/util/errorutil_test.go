package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	forbidden := NewForbidden("nope")
	wrapped := fmt.Errorf("handler: %w", forbidden)
	assert.Equal(t, http.StatusForbidden, ToDomainError(wrapped).HTTPStatus)

	fe := ToDomainError(fiber.NewError(http.StatusBadRequest, "invalid payload"))
	assert.Equal(t, "BAD_REQUEST", fe.Code)
	assert.Equal(t, "invalid payload", fe.Message)

	nf := ToDomainError(fmt.Errorf("scan: %w", pgx.ErrNoRows))
	assert.Equal(t, http.StatusNotFound, nf.HTTPStatus)

	boom := errors.New("boom")
	internal := ToDomainError(boom)
	assert.Equal(t, "INTERNAL_ERROR", internal.Code)
	assert.ErrorIs(t, internal, boom)
}

func TestDomainErrorMessage(t *testing.T) {
	err := NewServiceUnavailable("redis down", errors.New("dial tcp"))
	assert.Equal(t, "redis down: dial tcp", err.Error())
	assert.Equal(t, "unauthorized", NewUnauthorized("unauthorized").Error())
}
