package contract

import (
	"context"

	"github.com/huangsam/debtlens/schema"
	"github.com/stretchr/testify/mock"
)

// --- MockFetcher Implementation ---

// MockFetcher is a mock type for the Fetcher interface.
type MockFetcher struct {
	mock.Mock
}

var _ Fetcher = &MockFetcher{} // Compile-time check

// ListFiles implements the SourceFetcher interface.
func (m *MockFetcher) ListFiles(ctx context.Context, repo RepoRef) ([]FileEntry, error) {
	ret := m.Called(ctx, repo)
	files, _ := ret.Get(0).([]FileEntry)
	return files, ret.Error(1)
}

// FetchFile implements the SourceFetcher interface.
func (m *MockFetcher) FetchFile(ctx context.Context, repo RepoRef, entry FileEntry) (string, error) {
	ret := m.Called(ctx, repo, entry)
	return ret.String(0), ret.Error(1)
}

// ListCommits implements the HistoryFetcher interface.
func (m *MockFetcher) ListCommits(ctx context.Context, repo RepoRef, n int) ([]schema.CommitInfo, error) {
	ret := m.Called(ctx, repo, n)
	commits, _ := ret.Get(0).([]schema.CommitInfo)
	return commits, ret.Error(1)
}

// FetchCommit implements the HistoryFetcher interface.
func (m *MockFetcher) FetchCommit(ctx context.Context, repo RepoRef, info schema.CommitInfo) (schema.CommitDetail, error) {
	ret := m.Called(ctx, repo, info)
	detail, _ := ret.Get(0).(schema.CommitDetail)
	return detail, ret.Error(1)
}

// --- MockOpinionProvider Implementation ---

// MockOpinionProvider is a mock type for the OpinionProvider interface.
type MockOpinionProvider struct {
	mock.Mock
}

var _ OpinionProvider = &MockOpinionProvider{} // Compile-time check

// Opinion implements the OpinionProvider interface.
func (m *MockOpinionProvider) Opinion(ctx context.Context, filename, content string) (schema.OpinionVerdict, error) {
	ret := m.Called(ctx, filename, content)
	verdict, _ := ret.Get(0).(schema.OpinionVerdict)
	return verdict, ret.Error(1)
}

// --- MockRollupStore Implementation ---

// MockRollupStore is a mock type for the RollupStore interface.
type MockRollupStore struct {
	mock.Mock
}

var _ RollupStore = &MockRollupStore{} // Compile-time check

// SaveRollup implements the RollupStore interface.
func (m *MockRollupStore) SaveRollup(ctx context.Context, record schema.RollupRecord) (int64, error) {
	ret := m.Called(ctx, record)
	id, _ := ret.Get(0).(int64)
	return id, ret.Error(1)
}

// ListRollups implements the RollupStore interface.
func (m *MockRollupStore) ListRollups(ctx context.Context, actor string, limit int) ([]schema.RollupRecord, error) {
	ret := m.Called(ctx, actor, limit)
	records, _ := ret.Get(0).([]schema.RollupRecord)
	return records, ret.Error(1)
}

// ClearRollups implements the RollupStore interface.
func (m *MockRollupStore) ClearRollups(ctx context.Context, actor string) (int64, error) {
	ret := m.Called(ctx, actor)
	n, _ := ret.Get(0).(int64)
	return n, ret.Error(1)
}

// GetStatus implements the RollupStore interface.
func (m *MockRollupStore) GetStatus() (schema.RollupStatus, error) {
	ret := m.Called()
	status, _ := ret.Get(0).(schema.RollupStatus)
	return status, ret.Error(1)
}

// Close implements the RollupStore interface.
func (m *MockRollupStore) Close() error {
	return m.Called().Error(0)
}
