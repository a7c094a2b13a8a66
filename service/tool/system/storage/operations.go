package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	astorage "github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"github.com/viant/toolgate/model/types"
)

// Asset represents a file or directory in storage.
type Asset struct {
	URL     string    `json:"url"`
	Name    string    `json:"name"`
	IsDir   bool      `json:"isDir"`
	Mode    string    `json:"mode,omitempty"`
	Size    int64     `json:"size,omitempty"`
	ModTime time.Time `json:"modTime,omitempty"`
	Data    []byte    `json:"data,omitempty"`
}

// asExecutable adapts a typed operation to the tool method contract.
func asExecutable[I, O any](fn func(ctx context.Context, input *I, output *O) error) types.Executable {
	return func(ctx context.Context, in, out interface{}) error {
		input, ok := in.(*I)
		if !ok {
			return types.NewInvalidInputError(in)
		}
		output, ok := out.(*O)
		if !ok {
			return types.NewInvalidOutputError(out)
		}
		return fn(ctx, input, output)
	}
}

// ListInput defines parameters for listing assets.
type ListInput struct {
	URL       string `json:"url" required:"true" description:"URL to list assets from"`
	Recursive bool   `json:"recursive,omitempty" description:"list assets recursively"`
	PageSize  int    `json:"pageSize,omitempty" description:"maximum number of results"`
}

// ListOutput contains listed assets.
type ListOutput struct {
	Assets []*Asset `json:"assets,omitempty"`
}

// List lists assets at the input URL.
func (s *Service) List(ctx context.Context, input *ListInput, output *ListOutput) error {
	if input.URL == "" {
		return fmt.Errorf("url is required")
	}
	var listOptions []astorage.Option
	if input.Recursive {
		listOptions = append(listOptions, option.NewRecursive(true))
	}
	if input.PageSize > 0 {
		listOptions = append(listOptions, option.NewPage(0, input.PageSize))
	}
	objects, err := s.fs.List(ctx, input.URL, listOptions...)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", input.URL, err)
	}
	assets := make([]*Asset, 0, len(objects))
	for _, object := range objects {
		assets = append(assets, &Asset{
			URL:     object.URL(),
			Name:    path.Base(object.URL()),
			IsDir:   object.IsDir(),
			Mode:    object.Mode().String(),
			Size:    object.Size(),
			ModTime: object.ModTime(),
		})
	}
	output.Assets = assets
	return nil
}

// DownloadInput defines parameters for downloading assets.
type DownloadInput struct {
	URLs []string `json:"urls" required:"true" description:"URLs of assets to download"`
}

// DownloadOutput contains downloaded assets with their data.
type DownloadOutput struct {
	Assets []*Asset `json:"assets,omitempty"`
}

// Download fetches content for each input URL.
func (s *Service) Download(ctx context.Context, input *DownloadInput, output *DownloadOutput) error {
	if len(input.URLs) == 0 {
		return fmt.Errorf("at least one url is required")
	}
	assets := make([]*Asset, 0, len(input.URLs))
	for _, assetURL := range input.URLs {
		if assetURL == "" {
			continue
		}
		object, err := s.fs.Object(ctx, assetURL)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", assetURL, err)
		}
		if object.IsDir() {
			return fmt.Errorf("cannot download a directory, list it instead: %s", assetURL)
		}
		data, err := s.fs.DownloadWithURL(ctx, assetURL)
		if err != nil {
			return fmt.Errorf("failed to download %s: %w", assetURL, err)
		}
		assets = append(assets, &Asset{
			URL:     assetURL,
			Name:    path.Base(url.Path(assetURL)),
			Mode:    object.Mode().String(),
			Size:    object.Size(),
			ModTime: object.ModTime(),
			Data:    data,
		})
	}
	output.Assets = assets
	return nil
}

// UploadInput defines parameters for uploading assets.
type UploadInput struct {
	Assets []*Asset `json:"assets" required:"true" description:"assets to upload"`
}

// UploadOutput contains the uploaded assets as stored.
type UploadOutput struct {
	Assets []*Asset `json:"assets,omitempty"`
}

// Upload writes each asset's data to its URL.
func (s *Service) Upload(ctx context.Context, input *UploadInput, output *UploadOutput) error {
	if len(input.Assets) == 0 {
		return fmt.Errorf("at least one asset is required")
	}
	uploaded := make([]*Asset, 0, len(input.Assets))
	for _, asset := range input.Assets {
		if asset.URL == "" {
			return fmt.Errorf("asset url cannot be empty")
		}
		if err := s.fs.Upload(ctx, asset.URL, file.DefaultFileOsMode, bytes.NewReader(asset.Data)); err != nil {
			return err
		}
		object, err := s.fs.Object(ctx, asset.URL)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", asset.URL, err)
		}
		uploaded = append(uploaded, &Asset{
			URL:     asset.URL,
			Name:    path.Base(url.Path(asset.URL)),
			Mode:    object.Mode().String(),
			Size:    object.Size(),
			ModTime: object.ModTime(),
		})
	}
	output.Assets = uploaded
	return nil
}
