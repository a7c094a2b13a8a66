// Package storage exposes file operations over viant/afs, so tool calls can
// address local files and any scheme afs supports with the same URLs.
package storage

import (
	"reflect"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/toolgate/model/types"
)

const name = "system.storage"

// Service provides list, download and upload over an afs service.
type Service struct {
	fs afs.Service
}

// New creates a new storage service
func New() *Service {
	return &Service{fs: afs.New()}
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// SourceKey identifies this service to by-source-key policy selectors.
func (s *Service) SourceKey() string {
	return "filesystem"
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:                "list",
			Description:         "Lists assets at the given URL.",
			Input:               reflect.TypeOf(&ListInput{}),
			Output:              reflect.TypeOf(&ListOutput{}),
			DefaultApprovalMode: types.ApprovalAuto,
		},
		{
			Name:        "download",
			Description: "Downloads asset content from the given URLs.",
			Input:       reflect.TypeOf(&DownloadInput{}),
			Output:      reflect.TypeOf(&DownloadOutput{}),
		},
		{
			Name:                "upload",
			Description:         "Uploads asset content to the given URLs.",
			Input:               reflect.TypeOf(&UploadInput{}),
			Output:              reflect.TypeOf(&UploadOutput{}),
			DefaultApprovalMode: types.ApprovalRequired,
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "list":
		return asExecutable(s.List), nil
	case "download":
		return asExecutable(s.Download), nil
	case "upload":
		return asExecutable(s.Upload), nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}
