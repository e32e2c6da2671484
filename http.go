package gridcube

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-kit/kit/log/level"
	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"

	"github.com/akhenakh/gridcube/metrics"
)

const RequestIDHeader = "X-Request-Id"

// maxEnvelopeSize bounds the request body, payloads are a few bytes.
const maxEnvelopeSize = 64 << 10

// UplinkHandler accepts the gateway envelope over HTTP and replies with the
// response body, using its status code.
func (s *Server) UplinkHandler(w http.ResponseWriter, r *http.Request) {
	operationName := "/api/uplink"
	wireContext, err := opentracing.GlobalTracer().Extract(
		opentracing.HTTPHeaders,
		opentracing.HTTPHeadersCarrier(r.Header))
	if err != nil {
		level.Debug(s.logger).Log("msg", "can't find a span", "error", err)
	}

	serverSpan := opentracing.StartSpan(
		operationName,
		ext.RPCServerOption(wireContext))
	defer serverSpan.Finish()
	ctx := opentracing.ContextWithSpan(r.Context(), serverSpan)

	reqID := r.Header.Get(RequestIDHeader)
	if reqID == "" {
		reqID = uuid.New().String()
	}
	serverSpan.SetTag("request_id", reqID)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(RequestIDHeader, reqID)

	var env Envelope
	var resp Response
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEnvelopeSize))
	if err := dec.Decode(&env); err != nil {
		level.Warn(s.logger).Log("msg", "can't decode envelope", "request_id", reqID, "error", err)
		metrics.MsgReceivedCounter.WithLabelValues(metrics.ReceivedViaHTTP).Inc()
		metrics.ErrorCounter.Inc()
		resp = FailureResponse(fmt.Errorf("%w: %v", ErrInvalidEnvelope, err))
		resp.StatusCode = http.StatusBadRequest
	} else {
		resp = s.handle(ctx, metrics.ReceivedViaHTTP, env)
		if resp.StatusCode != http.StatusOK {
			level.Debug(s.logger).Log("msg", "uplink failed", "request_id", reqID, "error", resp.Body.Error)
		}
	}

	b, err := json.Marshal(resp.Body)
	if err != nil {
		level.Error(s.logger).Log("msg", "can't marshal json", "request_id", reqID, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(resp.StatusCode)
	w.Write(b)
}
