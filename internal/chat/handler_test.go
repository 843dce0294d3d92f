package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"legalens-backend/internal/llm"
)

func setupChatRouter(t *testing.T) (*gin.Engine, *Service, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, analysisID := newChatService(t, llm.NewMockClient())
	r := gin.New()
	api := r.Group("/api/v1")
	NewHandler(svc).RegisterRoutes(api)
	return r, svc, analysisID
}

func postJSON(r *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateSessionEndpoint(t *testing.T) {
	r, _, analysisID := setupChatRouter(t)

	w := postJSON(r, "/api/v1/chat/sessions", map[string]string{"analysisId": analysisID})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		ID         string `json:"id"`
		AnalysisID string `json:"analysisId"`
		DocType    string `json:"docType"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID == "" || resp.AnalysisID != analysisID {
		t.Fatalf("unexpected session payload: %+v", resp)
	}
	if resp.DocType == "" {
		t.Fatal("expected doc type in session payload")
	}
}

func TestCreateSessionValidation(t *testing.T) {
	r, _, _ := setupChatRouter(t)

	w := postJSON(r, "/api/v1/chat/sessions", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	w = postJSON(r, "/api/v1/chat/sessions", map[string]string{"analysisId": "missing"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown analysis, got %d", w.Code)
	}
}

func TestSendMessageEndpoint(t *testing.T) {
	r, svc, analysisID := setupChatRouter(t)

	session, err := svc.CreateSession(context.Background(), analysisID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	w := postJSON(r, "/api/v1/chat/sessions/"+session.ID+"/messages", map[string]string{"content": "What is the rent?"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		SessionID string  `json:"sessionId"`
		Reply     Message `json:"reply"`
		Degraded  bool    `json:"degraded"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SessionID != session.ID {
		t.Fatalf("unexpected session id %q", resp.SessionID)
	}
	if resp.Reply.Role != RoleAssistant || resp.Reply.Content == "" {
		t.Fatalf("unexpected reply: %+v", resp.Reply)
	}
	if resp.Degraded {
		t.Fatal("mock-backed turn must not be degraded")
	}
}

func TestSendMessageValidation(t *testing.T) {
	r, svc, analysisID := setupChatRouter(t)

	session, err := svc.CreateSession(context.Background(), analysisID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	w := postJSON(r, "/api/v1/chat/sessions/"+session.ID+"/messages", map[string]string{"content": "  "})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty content, got %d", w.Code)
	}

	w = postJSON(r, "/api/v1/chat/sessions/missing/messages", map[string]string{"content": "hello"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown session, got %d", w.Code)
	}
}

func TestGetSessionEndpoint(t *testing.T) {
	r, svc, analysisID := setupChatRouter(t)

	session, err := svc.CreateSession(context.Background(), analysisID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if _, err := svc.Send(context.Background(), session.ID, "First question?"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat/sessions/"+session.ID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		ID       string    `json:"id"`
		Messages []Message `json:"messages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(resp.Messages))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/chat/sessions/missing", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
