package workboard

import (
	"context"
	"net/url"
	"sync"

	"workboardmcp/server/internal/config"
	"workboardmcp/server/pkg/workboardapi"
)

// apiClient is the slice of the WorkBoard client this module consumes.
// Narrowed to an interface so tests can inject a fake.
type apiClient interface {
	Get(ctx context.Context, path string, params url.Values) (any, error)
	Post(ctx context.Context, path string, body any) (any, error)
	Put(ctx context.Context, path string, body any) (any, error)
}

// The transport handle is a process-scoped lazy singleton. ResetClient tears
// it down so tests (or a token rotation) can force re-creation.
var (
	clientMu     sync.Mutex
	sharedClient apiClient
)

func getClient() (apiClient, error) {
	clientMu.Lock()
	defer clientMu.Unlock()
	if sharedClient != nil {
		return sharedClient, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	sharedClient = workboardapi.NewClient(cfg.Token)
	return sharedClient, nil
}

// ResetClient drops the shared transport handle. The next call re-creates it.
func ResetClient() {
	clientMu.Lock()
	defer clientMu.Unlock()
	sharedClient = nil
}

// setClient installs a client directly. Test hook.
func setClient(c apiClient) {
	clientMu.Lock()
	defer clientMu.Unlock()
	sharedClient = c
}
