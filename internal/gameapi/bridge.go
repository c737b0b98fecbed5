package gameapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// BridgeCaller forwards requests to an HTTP bridge in front of the game
// session. Each call is a POST of {"method", "params"} to the bridge URL.
type BridgeCaller struct {
	url    string
	client *client.Client
}

// NewBridgeCaller creates a caller for the bridge listening at url
func NewBridgeCaller(url string) (*BridgeCaller, error) {
	c, err := client.NewClient()
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}
	return &BridgeCaller{url: url, client: c}, nil
}

type bridgeRequest struct {
	Method string         `json:"method"`
	Params map[string]any `json:"params"`
}

// Call posts the request and returns the response body
func (b *BridgeCaller) Call(ctx context.Context, method string, params map[string]any) ([]byte, error) {
	body, err := json.Marshal(bridgeRequest{Method: method, Params: params})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	req.SetRequestURI(b.url)
	req.SetMethod(consts.MethodPost)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	req.SetBody(body)

	if err := b.client.Do(ctx, req, resp); err != nil {
		return nil, err
	}
	if resp.StatusCode() != consts.StatusOK {
		return nil, fmt.Errorf("bridge returned status %d", resp.StatusCode())
	}
	return append([]byte(nil), resp.Body()...), nil
}
