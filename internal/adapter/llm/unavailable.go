package llm

import "context"

// UnavailableClient stands in for a client that could not be constructed.
// Every call fails with the construction error and no request is sent.
type UnavailableClient struct {
	err error
}

// NewUnavailableClient wraps the error that prevented client construction.
func NewUnavailableClient(err error) *UnavailableClient {
	return &UnavailableClient{err: err}
}

func (u *UnavailableClient) Check() error {
	return u.err
}

func (u *UnavailableClient) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	return nil, u.err
}

func (u *UnavailableClient) CreateChatCompletionStream(ctx context.Context, req *ChatCompletionRequest, callback StreamCallback) (*Usage, error) {
	return nil, u.err
}
