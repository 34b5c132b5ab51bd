package auth

import (
	"context"
)

// DataFetcher reads the current user and their API keys in one batched call.
// It needs a session that has already been verified.
type DataFetcher struct {
	session *Session
}

func NewDataFetcher(session *Session) *DataFetcher {
	return &DataFetcher{session: session}
}

// Fetch returns the raw batched response body.
func (f *DataFetcher) Fetch(ctx context.Context) ([]byte, error) {
	query, err := batchInputQuery(noInput, noInput)
	if err != nil {
		return nil, NewError(ErrProtectedFetchFailed, ErrTransport, 0, "", "encode input", err)
	}
	resp, err := f.session.Get(ctx, protectedDataPath, query)
	if err != nil || !resp.OK() {
		return nil, stepError(ErrProtectedFetchFailed, resp, err)
	}
	return resp.Body, nil
}
