package controllerImp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"policygen/entities"
	"policygen/pkg/logger"
)

type stubService struct {
	resp *entities.PolicyResponse
	err  error
}

func (s stubService) GenerationEnabled() bool { return true }
func (s stubService) GeneratePolicy(context.Context, string) (*entities.PolicyResponse, error) {
	return s.resp, s.err
}

func post(h *PolicyCtrl, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/generate_policy", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	_ = h.GeneratePolicy(e.NewContext(req, rec))
	return rec
}

func TestGeneratePolicyHandler(t *testing.T) {
	score := 0.5
	h := New(stubService{resp: &entities.PolicyResponse{
		Policy: "Policy text",
		RetrievedDocuments: []entities.Document{
			{ID: "d1", Content: "Fire is covered.", Meta: map[string]any{"file_path": "data/home.txt"}, Score: &score, Embedding: entities.Vector{1, 2}},
		},
	}}, logger.Discard())

	rec := post(h, `{"query":"fire"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"policy": "Policy text",
		"retrieved_documents": [{"id":"d1","content":"Fire is covered.","meta":{"file_path":"data/home.txt"},"score":0.5}]
	}`, rec.Body.String())
}

func TestGeneratePolicyHandlerErrors(t *testing.T) {
	rec := post(New(nil, logger.Discard()), `{"query":"fire"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"RAG pipeline is not initialized."}`, rec.Body.String())

	h := New(stubService{err: errors.New("llama.cpp completion: connection refused")}, logger.Discard())
	rec = post(h, `{"query":"fire"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")

	rec = post(h, `{"query":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(h, `{"query":"  "}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestWelcome(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	_ = New(nil, nil).Welcome(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"`+WelcomeMessage+`"}`, rec.Body.String())
}
