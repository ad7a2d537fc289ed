package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func createDocument(t *testing.T, router http.Handler, token, title, content string) int64 {
	t.Helper()
	resp := doJSON(t, router, http.MethodPost, "/api/v1/documents", token, map[string]string{
		"title":   title,
		"content": content,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var payload struct {
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	require.NotZero(t, payload.Data.ID)
	return payload.Data.ID
}

func TestDocumentHandlers_CRUD(t *testing.T) {
	router, cleanup := setupRouter(t, &stubProvider{generateResp: "stub answer"})
	defer cleanup()
	token := registerUser(t, router, uniqueEmail("docs"))

	docID := createDocument(t, router, token, "my title", "this is the document body with plenty of text")

	resp := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/documents/%d", docID), token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var getPayload struct {
		Data struct {
			Document struct {
				Title string `json:"title"`
			} `json:"document"`
			Sessions []interface{} `json:"sessions"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &getPayload))
	require.Equal(t, "my title", getPayload.Data.Document.Title)
	require.Empty(t, getPayload.Data.Sessions)

	resp = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/v1/documents/%d", docID), token, map[string]string{"title": "renamed"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = doJSON(t, router, http.MethodGet, "/api/v1/documents?search=renamed", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var listPayload struct {
		Data struct {
			Items []struct {
				ID int64 `json:"id"`
			} `json:"items"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &listPayload))
	require.Len(t, listPayload.Data.Items, 1)
	require.Equal(t, docID, listPayload.Data.Items[0].ID)

	resp = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/v1/documents/%d", docID), token, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/documents/%d", docID), token, nil)
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDocumentHandlers_OwnershipIsolation(t *testing.T) {
	router, cleanup := setupRouter(t, &stubProvider{})
	defer cleanup()
	tokenA := registerUser(t, router, uniqueEmail("owner-a"))
	tokenB := registerUser(t, router, uniqueEmail("owner-b"))

	docID := createDocument(t, router, tokenA, "private", "content only a should see")

	resp := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/documents/%d", docID), tokenB, nil)
	require.Equal(t, http.StatusNotFound, resp.Code)

	resp = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/v1/documents/%d", docID), tokenB, nil)
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDocumentHandlers_InvalidInput(t *testing.T) {
	router, cleanup := setupRouter(t, &stubProvider{})
	defer cleanup()
	token := registerUser(t, router, uniqueEmail("invalid"))

	resp := doJSON(t, router, http.MethodPost, "/api/v1/documents", token, map[string]string{"content": "   "})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	resp = doJSON(t, router, http.MethodGet, "/api/v1/documents/abc", token, nil)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}
