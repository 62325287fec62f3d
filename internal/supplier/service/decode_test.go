package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/concierge/internal/outcome"
	"github.com/allisson/concierge/internal/txcontext"
)

type jsonQuote struct {
	Total    float64 `json:"total"`
	Currency string  `json:"currency"`
}

type xmlQuote struct {
	Title string  `xml:"title"`
	Total float64 `xml:"total"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
		code outcome.Code
	}{
		{name: "valid", body: `{"total":10.5,"currency":"EUR"}`},
		{name: "syntax error", body: `{"total":`, code: outcome.CodeMalformedResponse},
		{name: "html page", body: `<html>oops</html>`, code: outcome.CodeMalformedResponse},
		{name: "wrong shape", body: `{"total":"ten"}`, code: outcome.CodeUnrecognisedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := txcontext.New("test")
			ctx := txcontext.WithContext(context.Background(), tc)

			result := DecodeJSON[jsonQuote](ctx, &Response{Status: http.StatusOK, Body: []byte(tt.body)})

			if tt.code == "" {
				require.True(t, result.Success(), result.String())
				assert.Equal(t, 10.5, result.Value().Total)
				assert.Equal(t, 0, tc.Len())
				return
			}
			assert.Equal(t, tt.code, result.Code())
			require.Equal(t, 1, tc.Len())
			assert.Equal(t, txcontext.LabelResponseMismatch, tc.Events()[0].Label)
		})
	}
}

func TestDecodeXML(t *testing.T) {
	t.Run("transcodes latin-1 documents", func(t *testing.T) {
		body := append([]byte(`<?xml version="1.0" encoding="ISO-8859-1"?><quote><title>Caf`), 0xe9)
		body = append(body, []byte(`</title><total>99.5</total></quote>`)...)

		result := DecodeXML[xmlQuote](context.Background(), &Response{Status: http.StatusOK, Body: body})

		require.True(t, result.Success(), result.String())
		assert.Equal(t, "Café", result.Value().Title)
		assert.Equal(t, 99.5, result.Value().Total)
	})

	t.Run("truncated document is malformed", func(t *testing.T) {
		result := DecodeXML[xmlQuote](context.Background(), &Response{Body: []byte(`<quote><title>x`)})
		assert.Equal(t, outcome.CodeMalformedResponse, result.Code())
	})

	t.Run("empty body is malformed", func(t *testing.T) {
		result := DecodeXML[xmlQuote](context.Background(), &Response{})
		assert.Equal(t, outcome.CodeMalformedResponse, result.Code())
	})

	t.Run("bad field value is unrecognised", func(t *testing.T) {
		result := DecodeXML[xmlQuote](context.Background(), &Response{Body: []byte(`<quote><total>abc</total></quote>`)})
		assert.Equal(t, outcome.CodeUnrecognisedResponse, result.Code())
	})
}

func TestUnrecognised(t *testing.T) {
	tc := txcontext.New("test")
	ctx := txcontext.WithContext(context.Background(), tc)

	result := Unrecognised[int](ctx, "missing reservation id", map[string]any{"field": "id"})

	assert.Equal(t, outcome.CodeUnrecognisedResponse, result.Code())
	assert.Equal(t, "missing reservation id", result.Message())
	require.Equal(t, 1, tc.Len())
}
