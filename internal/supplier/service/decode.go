package service

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/allisson/concierge/internal/outcome"
	"github.com/allisson/concierge/internal/txcontext"
)

// DecodeJSON parses a JSON body into T. Bodies that are not valid JSON yield
// malformed_response; valid JSON of the wrong shape yields unrecognised_response.
func DecodeJSON[T any](ctx context.Context, res *Response) outcome.Result[T] {
	var value T
	if err := json.Unmarshal(res.Body, &value); err != nil {
		return decodeFailure[T](ctx, res, err, jsonCode(err))
	}
	return outcome.Ok(value)
}

func jsonCode(err error) outcome.Code {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return outcome.CodeMalformedResponse
	}
	return outcome.CodeUnrecognisedResponse
}

// DecodeXML parses an XML body into T. Latin-1 and Windows-1252 documents are
// transcoded according to their XML declaration.
func DecodeXML[T any](ctx context.Context, res *Response) outcome.Result[T] {
	var value T
	decoder := xml.NewDecoder(bytes.NewReader(res.Body))
	decoder.CharsetReader = charsetReader
	if err := decoder.Decode(&value); err != nil {
		return decodeFailure[T](ctx, res, err, xmlCode(err))
	}
	return outcome.Ok(value)
}

func xmlCode(err error) outcome.Code {
	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return outcome.CodeMalformedResponse
	}
	return outcome.CodeUnrecognisedResponse
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(label) {
	case "iso-8859-1", "iso8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	case "utf-8", "utf8", "":
		return input, nil
	default:
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
}

// Unrecognised reports a response that parsed but did not carry what was expected.
func Unrecognised[T any](ctx context.Context, message string, metadata map[string]any) outcome.Result[T] {
	txcontext.FromContext(ctx).ResponseMismatch(message, metadata)
	return outcome.Fail[T](outcome.CodeUnrecognisedResponse, message)
}

func decodeFailure[T any](ctx context.Context, res *Response, err error, code outcome.Code) outcome.Result[T] {
	txcontext.FromContext(ctx).ResponseMismatch(err.Error(), map[string]any{
		"status":       res.Status,
		"content_type": res.ContentType(),
	})
	return outcome.Fail[T](code, err.Error())
}
