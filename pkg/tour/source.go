package tour

import (
	"context"
	"os"

	"github.com/matzehuels/vrtour/pkg/errors"
	"github.com/matzehuels/vrtour/pkg/httputil"
)

// Source loads a house manifest.
type Source interface {
	Load(ctx context.Context) (*House, error)
}

// FileSource reads a manifest from a local JSON file.
type FileSource struct {
	Path string
}

// Load reads and parses the manifest file.
func (s FileSource) Load(ctx context.Context) (*House, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "manifest %s", s.Path)
	}
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// HTTPSource fetches a manifest over HTTP through a caching client.
type HTTPSource struct {
	URL     string
	Client  *httputil.Client
	Refresh bool
}

// Load fetches and parses the manifest.
func (s HTTPSource) Load(ctx context.Context) (*House, error) {
	data, err := s.Client.GetBytes(ctx, s.URL, s.Refresh)
	if err != nil {
		if errors.Is(err, errors.ErrCodeNetwork) {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetch manifest %s", s.URL)
	}
	return Parse(data)
}

// NewSource picks a FileSource or HTTPSource for location.
func NewSource(location string, client *httputil.Client) (Source, error) {
	if err := errors.ValidateSource(location); err != nil {
		return nil, err
	}
	if errors.IsURL(location) {
		if client == nil {
			client = httputil.NewClient(nil, "manifest", 0, nil)
		}
		return HTTPSource{URL: location, Client: client}, nil
	}
	return FileSource{Path: location}, nil
}
