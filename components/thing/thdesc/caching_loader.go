package thdesc

import (
	"context"
	"errors"

	"github.com/open-control-systems/thingweb/components/core"
	"github.com/open-control-systems/thingweb/components/status"
	"github.com/open-control-systems/thingweb/components/storage/stcore"
)

// CachingLoader loads descriptions by URL and keeps the last known copy in the database.
type CachingLoader struct {
	fetcher Fetcher
	db      stcore.DB
}

// NewCachingLoader is an initialization of CachingLoader.
//
// Parameters:
//   - fetcher to fetch descriptions.
//   - db to persist fetched descriptions, keyed by URL.
func NewCachingLoader(fetcher Fetcher, db stcore.DB) *CachingLoader {
	return &CachingLoader{
		fetcher: fetcher,
		db:      db,
	}
}

// Load fetches the description from url.
//
// Remarks:
//   - If fetching fails, the cached copy is used instead.
//   - Only successfully parsed documents are cached.
func (l *CachingLoader) Load(ctx context.Context, url string) (*Description, error) {
	data, fetchErr := l.fetcher.Fetch(ctx, url)
	if fetchErr == nil {
		desc, err := FromBytes(data)
		if err != nil {
			return nil, err
		}

		if err := l.db.Write(url, stcore.Blob{Data: data}); err != nil {
			core.LogWrn.Printf("description-loader: failed to cache: url=%s err=%v\n",
				url, err)
		}

		return desc, nil
	}

	blob, err := l.db.Read(url)
	if err != nil {
		if errors.Is(err, status.StatusNoData) {
			return nil, fetchErr
		}

		return nil, errors.Join(fetchErr, err)
	}

	core.LogWrn.Printf("description-loader: using cached copy: url=%s err=%v\n",
		url, fetchErr)

	return FromBytes(blob.Data)
}
