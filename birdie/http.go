package birdie

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// execute performs exactly one HTTP exchange for spec against url. Failure
// statuses come back as a classified *Error; transport failures as an *Error
// of KindConnection. It never retries.
func (s *Session) execute(ctx context.Context, requestID, url string, spec RequestSpec) (*ResponseEnvelope, error) {
	h := http.Header{}
	mergeHeaders(h, spec.Headers)
	h.Set("User-Agent", s.cfg.UserAgent)
	h.Set("Accept", mimeJSON)

	var payload []byte
	if spec.Body != nil {
		b, err := json.Marshal(spec.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		payload = b
		h.Set("Content-Type", mimeJSON)
	}

	req := s.http.R().SetContext(ctx)
	for k, vs := range h {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if payload != nil {
		req.SetBody(payload)
	}

	s.traceRequest(requestID, spec.Method, url, h, payload)
	res, err := req.Execute(spec.Method, url)
	if err != nil {
		return nil, &Error{Kind: KindConnection, Err: err}
	}
	raw := res.Body()
	s.traceResponse(requestID, res.StatusCode(), res.Header(), raw)

	body := s.decodeBody(requestID, raw)
	if res.StatusCode() >= 400 {
		return nil, Classify(res.StatusCode(), body)
	}
	return &ResponseEnvelope{StatusCode: res.StatusCode(), Headers: res.Header(), Body: body}, nil
}

// decodeBody decodes a JSON body. Empty and malformed bodies both decode to
// nil; a malformed body is not an error.
func (s *Session) decodeBody(requestID string, raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		s.logger.Debug("response body is not JSON", zap.String("request_id", requestID), zap.Error(err))
		return nil
	}
	return v
}
