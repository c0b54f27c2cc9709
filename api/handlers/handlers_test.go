package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nitinog10/Campus-mitra/internal/models"
	"github.com/nitinog10/Campus-mitra/internal/vectorstore"
	"github.com/nitinog10/Campus-mitra/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDocumentStore struct {
	ingestedName string
	ingestErr    error
	deleteErr    error
	status       models.DocumentStatus
	list         []models.DocumentSummary
}

func (f *fakeDocumentStore) Ingest(_ context.Context, _ []byte, filename string) (string, error) {
	if f.ingestErr != nil {
		return "", f.ingestErr
	}
	f.ingestedName = filename
	return "doc-123", nil
}

func (f *fakeDocumentStore) Resolve(context.Context, string) (*vectorstore.Index, error) {
	return nil, models.ErrNotFound
}

func (f *fakeDocumentStore) Retrieve(context.Context, string, string, int) ([]models.Chunk, error) {
	return nil, models.ErrNotFound
}

func (f *fakeDocumentStore) List() []models.DocumentSummary { return f.list }

func (f *fakeDocumentStore) Status(string) models.DocumentStatus { return f.status }

func (f *fakeDocumentStore) Delete(string) error { return f.deleteErr }

func (f *fakeDocumentStore) ReconcileFromDisk() (int, error) { return 0, nil }

type fakeChatService struct {
	lastQuery string
	lastDocs  []string
}

func (f *fakeChatService) Query(_ context.Context, query, documentID, _ string) *models.ChatResult {
	f.lastQuery = query
	f.lastDocs = []string{documentID}
	return &models.ChatResult{Success: true, Response: "ok", ContentType: "markdown"}
}

func (f *fakeChatService) QueryMulti(_ context.Context, query string, documentIDs []string, _ string) *models.ChatResult {
	f.lastQuery = query
	f.lastDocs = documentIDs
	return &models.ChatResult{Success: true, Response: "ok", ContentType: "markdown"}
}

func testRouter(store *fakeDocumentStore, chat *fakeChatService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandlers(store, chat, logger.NewTestLogger(), 20*1024*1024)
	r := gin.New()
	r.POST("/api/documents/process", h.Document.ProcessDocument)
	r.GET("/api/documents/list", h.Document.ListDocuments)
	r.GET("/api/documents/status/:docId", h.Document.GetStatus)
	r.DELETE("/api/documents/:docId", h.Document.DeleteDocument)
	r.POST("/api/chat/query", h.Chat.Query)
	r.POST("/api/chat/search-multiple", h.Chat.SearchMultiple)
	return r
}

func multipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestProcessDocumentSuccess(t *testing.T) {
	store := &fakeDocumentStore{}
	r := testRouter(store, &fakeChatService{})

	body, contentType := multipartUpload(t, "file", "handbook.pdf", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/api/documents/process", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "doc-123", resp["document_id"])
	assert.Equal(t, "handbook.pdf", store.ingestedName)
}

func TestProcessDocumentRejectsNonPDF(t *testing.T) {
	r := testRouter(&fakeDocumentStore{}, &fakeChatService{})

	body, contentType := multipartUpload(t, "file", "notes.txt", []byte("plain text"))
	req := httptest.NewRequest(http.MethodPost, "/api/documents/process", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Only PDF files are supported")
}

func TestProcessDocumentRejectsMissingFile(t *testing.T) {
	r := testRouter(&fakeDocumentStore{}, &fakeChatService{})

	req := httptest.NewRequest(http.MethodPost, "/api/documents/process", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProcessDocumentConfigurationError(t *testing.T) {
	store := &fakeDocumentStore{ingestErr: models.ErrConfiguration}
	r := testRouter(store, &fakeChatService{})

	body, contentType := multipartUpload(t, "file", "handbook.pdf", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/api/documents/process", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestListDocumentsEmpty(t *testing.T) {
	r := testRouter(&fakeDocumentStore{}, &fakeChatService{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/documents/list", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No documents found")
}

func TestListDocuments(t *testing.T) {
	store := &fakeDocumentStore{list: []models.DocumentSummary{
		{DocID: "doc-1", Filename: "a.pdf", Status: models.StatusProcessed, Chunks: 3},
	}}
	r := testRouter(store, &fakeChatService{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/documents/list", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success   bool                     `json:"success"`
		Documents []models.DocumentSummary `json:"documents"`
		Count     int                      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Documents, 1)
	assert.Equal(t, "a.pdf", resp.Documents[0].Filename)
}

func TestGetStatus(t *testing.T) {
	store := &fakeDocumentStore{status: models.StatusProcessed}
	r := testRouter(store, &fakeChatService{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/documents/status/doc-1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "processed")
}

func TestGetStatusUnknownDocument(t *testing.T) {
	store := &fakeDocumentStore{status: models.StatusNotFound}
	r := testRouter(store, &fakeChatService{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/documents/status/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteDocumentNotFound(t *testing.T) {
	store := &fakeDocumentStore{deleteErr: models.ErrNotFound}
	r := testRouter(store, &fakeChatService{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/documents/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatQuery(t *testing.T) {
	chat := &fakeChatService{}
	r := testRouter(&fakeDocumentStore{}, chat)

	payload := `{"query":"library hours?","document_id":"doc-1","session_id":"s1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat/query", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "library hours?", chat.lastQuery)
	assert.Equal(t, []string{"doc-1"}, chat.lastDocs)
}

func TestChatQueryRequiresQuery(t *testing.T) {
	r := testRouter(&fakeDocumentStore{}, &fakeChatService{})

	req := httptest.NewRequest(http.MethodPost, "/api/chat/query", strings.NewReader(`{"document_id":"doc-1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchMultiple(t *testing.T) {
	chat := &fakeChatService{}
	r := testRouter(&fakeDocumentStore{}, chat)

	payload := `{"query":"campus rules","document_ids":["doc-1","doc-2"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat/search-multiple", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"doc-1", "doc-2"}, chat.lastDocs)
}
