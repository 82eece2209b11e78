package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"catalogstudio/internal/observability"
)

// maxBodyBytes caps a decoded response body.
const maxBodyBytes = 32 << 20

func (g *Gateway) newJSONRequest(ctx context.Context, method, url string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// roundTrip sends req and decodes a JSON object body. Non-2xx responses are
// returned with their decoded body (when there is one) so callers can read
// the error field.
func (g *Gateway) roundTrip(op string, req *http.Request) (map[string]any, int, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(req.Context()); err != nil {
			return nil, 0, remoteErr(op, err.Error(), 0, err)
		}
	}

	g.log.Debug("backend request", zap.String("method", req.Method), zap.String("url", req.URL.String()))

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, 0, remoteErr(op, err.Error(), 0, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, g.maxBody+1))
	if err != nil {
		return nil, resp.StatusCode, remoteErr(op, err.Error(), resp.StatusCode, err)
	}
	if int64(len(raw)) > g.maxBody {
		return nil, resp.StatusCode, remoteErr(op, fmt.Sprintf("response body exceeds %d bytes", g.maxBody), resp.StatusCode, nil)
	}

	g.log.Debug("backend response", zap.Int("status", resp.StatusCode), zap.Int("bytes", len(raw)))

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		if !statusOK(resp.StatusCode) {
			return nil, resp.StatusCode, remoteErr(op, fmt.Sprintf("HTTP %d", resp.StatusCode), resp.StatusCode, nil)
		}
		return nil, resp.StatusCode, remoteErr(op, "invalid JSON response", resp.StatusCode, err)
	}
	return body, resp.StatusCode, nil
}

// checkStatus enforces the transport-level contract only.
func checkStatus(op string, body map[string]any, status int) error {
	if statusOK(status) {
		return nil
	}
	return remoteErr(op, errorField(body, fmt.Sprintf("HTTP %d", status)), status, nil)
}

// checkEnvelope enforces transport status plus success:true.
func checkEnvelope(op string, body map[string]any, status int) error {
	if err := checkStatus(op, body, status); err != nil {
		return err
	}
	if ok, _ := body["success"].(bool); !ok {
		return remoteErr(op, errorField(body, "request was not successful"), status, nil)
	}
	return nil
}

func errorField(body map[string]any, def string) string {
	if msg, ok := body["error"].(string); ok && msg != "" {
		return msg
	}
	return def
}

func statusOK(code int) bool {
	return code >= 200 && code < 300
}

// track records latency and outcome of one call and logs failures.
func (g *Gateway) track(call string, start time.Time, errp *error) {
	observability.GatewayDuration.WithLabelValues(call).Observe(time.Since(start).Seconds())
	if *errp != nil {
		observability.GatewayRequests.WithLabelValues(call, "error").Inc()
		g.log.Error("backend call failed", zap.String("call", call), zap.Error(*errp))
		return
	}
	observability.GatewayRequests.WithLabelValues(call, "success").Inc()
}
