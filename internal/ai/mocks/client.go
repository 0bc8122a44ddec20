package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Mock ai.Client
type Client struct {
	mock.Mock
}

func (m *Client) GenerateText(ctx context.Context, systemContext, seedText string) (string, error) {
	args := m.Called(ctx, systemContext, seedText)
	return args.String(0), args.Error(1)
}

func (m *Client) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	args := m.Called(ctx, prompt)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}
