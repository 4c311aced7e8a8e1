package tools

import (
	"context"

	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/types"
	"github.com/stretchr/testify/mock"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Execute(ctx context.Context, req types.ExecuteRequest) (interface{}, error) {
	args := m.Called(ctx, req)
	return args.Get(0), args.Error(1)
}

type mockOrchestrator struct {
	mock.Mock
}

func (m *mockOrchestrator) GenerateUI(ctx context.Context, message, parentID string) (*types.UIResponse, error) {
	args := m.Called(ctx, message, parentID)
	resp, _ := args.Get(0).(*types.UIResponse)
	return resp, args.Error(1)
}

func (m *mockOrchestrator) ListApps(ctx context.Context) (*types.AppList, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).(*types.AppList)
	return list, args.Error(1)
}

type recordingNotifier struct {
	got []Notification
}

func (r *recordingNotifier) Notify(n Notification) {
	r.got = append(r.got, n)
}
