package advisor

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

type fakeCompleter struct {
	mu       sync.Mutex
	result   CompletionResult
	err      error
	requests []CompletionRequest
}

func (f *fakeCompleter) Complete(_ context.Context, req CompletionRequest) (CompletionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.result, f.err
}

func (f *fakeCompleter) Provider() string {
	return "fake"
}

type companyCall struct {
	symbol   string
	from, to time.Time
}

type fakeNewsSource struct {
	mu           sync.Mutex
	general      []NewsItem
	generalErr   error
	generalCalls int
	company      map[string][]NewsItem
	companyErr   map[string]error
	companyCalls []companyCall
}

func (f *fakeNewsSource) GeneralNews(context.Context) ([]NewsItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generalCalls++
	return f.general, f.generalErr
}

func (f *fakeNewsSource) CompanyNews(_ context.Context, symbol string, from, to time.Time) ([]NewsItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.companyCalls = append(f.companyCalls, companyCall{symbol: symbol, from: from, to: to})
	if err := f.companyErr[symbol]; err != nil {
		return nil, err
	}
	return f.company[symbol], nil
}

func newTestCore(t *testing.T, completer Completer, source NewsSource) *Core {
	t.Helper()
	core, err := New(Options{
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Completer:  completer,
		NewsSource: source,
		Location:   time.UTC,
		Now:        func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = core.Close() })
	return core
}
