package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// Request is a small fluent wrapper over http.Client used for all backend
// calls.
type Request struct {
	client  *http.Client
	url     string
	method  string
	body    io.Reader
	args    map[string]string
	headers map[string]string
	logger  *slog.Logger
	err     error
}

func NewRequest(c *http.Client, url string) *Request {
	return &Request{client: c, url: url, method: http.MethodGet}
}

func (r *Request) Logger(l *slog.Logger) *Request {
	r.logger = l

	return r
}

func (r *Request) Post() *Request {
	r.method = http.MethodPost

	return r
}

func (r *Request) Args(args map[string]string) *Request {
	if r.args == nil {
		r.args = make(map[string]string)
	}

	for k, v := range args {
		r.args[k] = v
	}

	return r
}

func (r *Request) Arg(key, value string) *Request {
	return r.Args(map[string]string{key: value})
}

func (r *Request) Header(key, value string) *Request {
	if r.headers == nil {
		r.headers = make(map[string]string)
	}

	r.headers[key] = value

	return r
}

func (r *Request) Body(body io.Reader, contentType string) *Request {
	r.body = body

	return r.Header("Content-Type", contentType)
}

// JSONBody marshals obj as the POST payload.
func (r *Request) JSONBody(obj any) *Request {
	b, err := json.Marshal(obj)
	if err != nil {
		r.err = err

		return r
	}

	return r.Body(bytes.NewReader(b), "application/json")
}

// Do runs the request and returns the response regardless of status code;
// callers decide what a 409 body means.
func (r *Request) Do(ctx context.Context) (*http.Response, error) {
	if r.err != nil {
		return nil, r.err
	}

	req, err := http.NewRequestWithContext(ctx, r.method, r.url, r.body)
	if err != nil {
		return nil, err
	}

	req.Header.Del("User-Agent")

	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	if len(r.args) > 0 {
		q := req.URL.Query()

		for k, v := range r.args {
			q.Add(k, v)
		}

		req.URL.RawQuery = q.Encode()
	}

	res, err := r.client.Do(req)
	if err != nil {
		if r.logger != nil {
			r.logger.Info(fmt.Sprintf("%s %s - error %s", r.method, req.URL, err.Error()))
		}

		return nil, err
	}

	if r.logger != nil {
		r.logger.Info(fmt.Sprintf("%s %s - %d", r.method, req.URL, res.StatusCode))
	}

	return res, nil
}

// GetJSON runs the request and decodes a 2xx body into obj.
func (r *Request) GetJSON(ctx context.Context, obj any) error {
	res, err := r.Do(ctx)
	if err != nil {
		return err
	}

	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return decodeError(res)
	}

	return json.NewDecoder(res.Body).Decode(obj)
}

// decodeError extracts the structured {error} body, falling back on the
// status line.
func decodeError(res *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}

	if err := json.NewDecoder(res.Body).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("server: %s", body.Error)
	}

	return fmt.Errorf("status is %s", res.Status)
}
