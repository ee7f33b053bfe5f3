package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// HttpRequest sends data and returns the status code and body. data may be
// an io.Reader, which is sent as is, or any value, which is sent as JSON.
func HttpRequest(ctx context.Context, client *http.Client, method, url string, header map[string]string, data interface{}) (int, []byte, error) {
	var (
		body io.Reader
		req  *http.Request
		err  error
	)

	// 序列化參數
	switch payload := data.(type) {
	case nil:
	case io.Reader:
		body = payload
	default:
		requestBody, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(requestBody)
	}
	if req, err = http.NewRequestWithContext(ctx, method, url, body); err != nil {
		return 0, nil, err
	}

	if client == nil {
		client = http.DefaultClient
	}

	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for key, element := range header {
		req.Header.Set(key, element)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	// 讀取 body
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, respBody, nil
}
