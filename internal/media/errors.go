package media

import "errors"

// ErrAssetFetch wraps every download failure. Ingest reports such failures
// as IngestFetchFailed rather than returning them.
var ErrAssetFetch = errors.New("failed to fetch asset")
