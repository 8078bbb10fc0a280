package view

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON_Render(t *testing.T) {
	rec := httptest.NewRecorder()
	err := JSON{}.Render(rec, http.StatusOK, "login", Data{"errorMessage": "Invalid password"})
	require.NoError(t, err)

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got struct {
		View string         `json:"view"`
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "login", got.View)
	assert.Equal(t, "Invalid password", got.Data["errorMessage"])
}
