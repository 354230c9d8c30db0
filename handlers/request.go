package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/camden-git/personasapi/services"
)

const (
	multipartMemory = 4 << 20
	imageFormField  = "imagen"
)

var errBodyTooLarge = errors.New("request body too large")

// decodePersonaRequest reads a JSON, urlencoded or multipart body. The returned
// cleanup releases the uploaded file and any temp files.
func decodePersonaRequest(w http.ResponseWriter, r *http.Request, maxBytes int64) (services.PersonaRequest, func(), error) {
	noop := func() {}
	req := services.PersonaRequest{Fields: map[string]interface{}{}}
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}

	mediaType := ""
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return req, noop, fmt.Errorf("invalid Content-Type: %w", err)
		}
		mediaType = mt
	}

	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return req, noop, bodyError(err)
		}
		cleanup := func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}
		for key, values := range r.MultipartForm.Value {
			if len(values) > 0 {
				req.Fields[key] = values[0]
			}
		}
		if headers := r.MultipartForm.File[imageFormField]; len(headers) > 0 {
			file, err := headers[0].Open()
			if err != nil {
				cleanup()
				return req, noop, fmt.Errorf("failed to open uploaded image: %w", err)
			}
			req.Image = file
			// a file part wins over a text field of the same name
			delete(req.Fields, imageFormField)
			return req, func() {
				file.Close()
				cleanup()
			}, nil
		}
		return req, cleanup, nil

	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return req, noop, bodyError(err)
		}
		for key, values := range r.PostForm {
			if len(values) > 0 {
				req.Fields[key] = values[0]
			}
		}
		return req, noop, nil

	case "", "application/json":
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return req, noop, bodyError(err)
		}
		if len(bytes.TrimSpace(body)) == 0 {
			return req, noop, nil
		}
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		var fields map[string]interface{}
		if err := dec.Decode(&fields); err != nil {
			return req, noop, fmt.Errorf("invalid JSON body: %w", err)
		}
		if err := dec.Decode(&struct{}{}); err != io.EOF {
			return req, noop, errors.New("invalid JSON body: unexpected data after the top-level object")
		}
		if fields != nil {
			req.Fields = fields
		}
		return req, noop, nil

	default:
		return req, noop, fmt.Errorf("unsupported Content-Type %q", mediaType)
	}
}

func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: limit is %d bytes", errBodyTooLarge, maxErr.Limit)
	}
	return fmt.Errorf("malformed request body: %w", err)
}
