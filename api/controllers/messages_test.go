package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/buildtrack/buildtrack-backend/api/middleware"
	messagesvc "github.com/buildtrack/buildtrack-backend/internal/messages"
	"github.com/buildtrack/buildtrack-backend/pkg/db/models"
)

func TestMessageSend(t *testing.T) {
	logg := testLogger()
	senderID := uuid.New()
	recipientID := uuid.New()

	t.Run("success", func(t *testing.T) {
		stub := &stubMessageService{}
		ctx := middleware.WithUserID(context.Background(), senderID.String())
		ctx = middleware.WithUserName(ctx, "Robin Alvarez")
		body := `{"recipientId":"` + recipientID.String() + `","body":"rebar delivery at noon"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", strings.NewReader(body)).WithContext(ctx)
		rec := httptest.NewRecorder()
		MessageSend(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.senderID != senderID || stub.senderName != "Robin Alvarez" || stub.recipientID != recipientID {
			t.Fatalf("sender identity not forwarded: %+v", stub)
		}
	})

	t.Run("no user context", func(t *testing.T) {
		body := `{"recipientId":"` + recipientID.String() + `","body":"hi"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", strings.NewReader(body))
		rec := httptest.NewRecorder()
		MessageSend(&stubMessageService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("empty body text", func(t *testing.T) {
		ctx := middleware.WithUserID(context.Background(), senderID.String())
		body := `{"recipientId":"` + recipientID.String() + `","body":""}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", strings.NewReader(body)).WithContext(ctx)
		rec := httptest.NewRecorder()
		MessageSend(&stubMessageService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestMessagesListParsesQuery(t *testing.T) {
	logg := testLogger()
	recipientID := uuid.New()

	stub := &stubMessageService{}
	ctx := middleware.WithUserID(context.Background(), recipientID.String())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/messages?limit=10&unread=true&cursor=abc", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	MessagesList(stub, logg).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.listParams.RecipientID != recipientID {
		t.Fatalf("expected caller as recipient")
	}
	if stub.listParams.Limit != 10 || !stub.listParams.UnreadOnly || stub.listParams.Cursor != "abc" {
		t.Fatalf("query params not forwarded: %+v", stub.listParams)
	}
}

func TestMessagesListRejectsBadLimit(t *testing.T) {
	logg := testLogger()
	ctx := middleware.WithUserID(context.Background(), uuid.NewString())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/messages?limit=9001", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	MessagesList(&stubMessageService{}, logg).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range limit, got %d", rec.Code)
	}
}

type stubMessageService struct {
	senderID    uuid.UUID
	senderName  string
	recipientID uuid.UUID
	listParams  messagesvc.PageParams
}

func (s *stubMessageService) Send(ctx context.Context, senderID uuid.UUID, senderName string, recipientID uuid.UUID, body string) (*models.Message, error) {
	s.senderID, s.senderName, s.recipientID = senderID, senderName, recipientID
	return &models.Message{ID: uuid.New(), SenderID: senderID, RecipientID: recipientID, Body: body}, nil
}

func (s *stubMessageService) List(ctx context.Context, params messagesvc.PageParams) (*messagesvc.ListResult, error) {
	s.listParams = params
	return &messagesvc.ListResult{}, nil
}

func (s *stubMessageService) MarkRead(ctx context.Context, recipientID, messageID uuid.UUID) error {
	return nil
}

func (s *stubMessageService) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return 0, nil
}

func (s *stubMessageService) UnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return 0, nil
}
