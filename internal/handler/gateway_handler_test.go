package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-challenge-api/internal/dto"
)

type fakeConversationService struct {
	reply    dto.GatewayReply
	err      error
	received dto.GatewayMessageRequest
}

func (f *fakeConversationService) HandleMessage(_ context.Context, payload dto.GatewayMessageRequest) (dto.GatewayReply, error) {
	f.received = payload
	if f.err != nil {
		return dto.GatewayReply{}, f.err
	}
	return f.reply, nil
}

func newGatewayApp(svc *fakeConversationService) *fiber.App {
	app := fiber.New()
	NewGatewayHandler(svc, zerolog.Nop()).Register(app.Group("/gateway"))
	return app
}

func TestGatewayReceiveReturnsReply(t *testing.T) {
	svc := &fakeConversationService{reply: dto.GatewayReply{Message: "Enter your first name:", Done: false}}
	app := newGatewayApp(svc)

	body, err := json.Marshal(dto.GatewayMessageRequest{ChatID: 42, Action: "start"})
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodPost, "/gateway/messages", bytes.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, int64(42), svc.received.ChatID)

	var envelope struct {
		Success bool             `json:"success"`
		Data    dto.GatewayReply `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.True(t, envelope.Success)
	require.Equal(t, "Enter your first name:", envelope.Data.Message)
}

func TestGatewayReceiveRejectsMalformedBody(t *testing.T) {
	app := newGatewayApp(&fakeConversationService{})

	req := httptest.NewRequest(fiber.MethodPost, "/gateway/messages", bytes.NewReader([]byte("{not json")))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGatewayReceiveMapsValidationErrors(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validationErr := validate.Struct(dto.GatewayMessageRequest{})
	require.Error(t, validationErr)

	app := newGatewayApp(&fakeConversationService{err: validationErr})

	req := httptest.NewRequest(fiber.MethodPost, "/gateway/messages", bytes.NewReader([]byte(`{"text":"hello"}`)))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
