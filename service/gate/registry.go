package gate

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/viant/toolgate/model/types"
	"github.com/viant/x"
)

// Registry holds the tool services callable through the adapter, together
// with an x type registry of their input and output types.
type Registry struct {
	types    *x.Registry
	services map[string]types.Service
	mux      sync.RWMutex
}

// NewRegistry creates a tool registry, optionally pre-seeded with named types.
func NewRegistry(goTypes ...*x.Type) *Registry {
	ret := &Registry{
		types:    x.NewRegistry(),
		services: make(map[string]types.Service),
	}
	for _, t := range goTypes {
		if t != nil {
			ret.types.Register(t)
		}
	}
	return ret
}

// Types returns the registered type registry.
func (r *Registry) Types() *x.Registry {
	return r.types
}

// Register adds a tool service, registering each method's input and output
// types so they stay addressable by name.
func (r *Registry) Register(service types.Service) {
	r.mux.Lock()
	defer r.mux.Unlock()
	for _, signature := range service.Methods() {
		if rType := structType(signature.Input); rType != nil {
			r.types.Register(x.NewType(rType))
		}
		if rType := structType(signature.Output); rType != nil {
			r.types.Register(x.NewType(rType))
		}
	}
	r.services[service.Name()] = service
}

// structType dereferences a pointer type so types register under their
// element name.
func structType(rType reflect.Type) reflect.Type {
	if rType == nil {
		return nil
	}
	if rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	return rType
}

// Lookup returns a service by name.
func (r *Registry) Lookup(name string) types.Service {
	r.mux.RLock()
	defer r.mux.RUnlock()
	return r.services[name]
}

// Services returns the registered service names.
func (r *Registry) Services() []string {
	r.mux.RLock()
	defer r.mux.RUnlock()
	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	return names
}

// Tool is a resolved dotted tool path.
type Tool struct {
	Path       string
	Service    types.Service
	Signature  *types.Signature
	Executable types.Executable
	// SourceKey identifies the tool's origin for by-source-key policy rules.
	SourceKey string
}

// Tool resolves "<service>.<method>" into its service, signature and
// executable. The method name is the last dot-delimited segment, so service
// names may themselves be dotted (e.g. "system.exec").
func (r *Registry) Tool(path string) (*Tool, error) {
	idx := strings.LastIndex(path, ".")
	if idx <= 0 || idx == len(path)-1 {
		return nil, fmt.Errorf("invalid tool path %q", path)
	}
	serviceName, methodName := path[:idx], path[idx+1:]
	service := r.Lookup(serviceName)
	if service == nil {
		return nil, fmt.Errorf("tool service %q not found", serviceName)
	}
	signature := service.Methods().Lookup(methodName)
	if signature == nil {
		return nil, types.NewMethodNotFoundError(methodName)
	}
	executable, err := service.Method(methodName)
	if err != nil {
		return nil, err
	}
	ret := &Tool{
		Path:       path,
		Service:    service,
		Signature:  signature,
		Executable: executable,
	}
	if provider, ok := service.(types.SourceKeyProvider); ok {
		ret.SourceKey = provider.SourceKey()
	}
	return ret, nil
}
