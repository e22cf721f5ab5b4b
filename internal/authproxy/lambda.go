package authproxy

import (
	"context"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// Handler adapts API Gateway proxy events to Proxy.Forward.
type Handler struct {
	proxy *Proxy
}

// NewHandler creates a Lambda handler around a proxy.
func NewHandler(proxy *Proxy) *Handler {
	return &Handler{proxy: proxy}
}

// Handle is the function entry point.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := req.Headers
	if len(headers) == 0 && len(req.MultiValueHeaders) > 0 {
		headers = make(map[string]string, len(req.MultiValueHeaders))
		for k, v := range req.MultiValueHeaders {
			headers[k] = strings.Join(v, ",")
		}
	}

	resp, err := h.proxy.Forward(ctx, Event{
		Path:            req.Path,
		Method:          req.HTTPMethod,
		Headers:         headers,
		Query:           req.QueryStringParameters,
		Body:            req.Body,
		IsBase64Encoded: req.IsBase64Encoded,
	})
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return events.APIGatewayProxyResponse{
		StatusCode:        resp.StatusCode,
		Headers:           resp.Headers,
		MultiValueHeaders: resp.MultiValueHeaders,
		Body:              resp.Body,
	}, nil
}
