package pdf

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPConverter_Convert(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		file, header, err := r.FormFile("document")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		assert.Equal(t, "RE-2026-00001.html", header.Filename)

		content, _ := io.ReadAll(file)
		assert.Equal(t, "<p>invoice</p>", string(content))

		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7 fake"))
	}))
	defer server.Close()

	c := NewHTTPConverter(server.URL, time.Second)
	data, err := c.Convert(context.Background(), "RE-2026-00001", []byte("<p>invoice</p>"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 fake", string(data))
	assert.True(t, c.Enabled())
}

func TestHTTPConverter_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		payload string
	}{
		{"server error", http.StatusInternalServerError, "boom"},
		{"not a pdf", http.StatusOK, "<html>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.payload))
			}))
			defer server.Close()

			_, err := NewHTTPConverter(server.URL, time.Second).Convert(context.Background(), "doc", []byte("x"))
			assert.Error(t, err)
		})
	}
}

func TestNew(t *testing.T) {
	disabled := New("", 0)
	assert.False(t, disabled.Enabled())
	_, err := disabled.Convert(context.Background(), "doc", nil)
	assert.ErrorIs(t, err, ErrDisabled)

	assert.True(t, New("http://converter", 0).Enabled())
}
