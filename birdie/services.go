package birdie

import (
	"context"
	"fmt"
	"net/url"
)

// VServiceManager manages gateway service resources.
type VServiceManager struct {
	*Manager
}

// NewVServiceManager binds a service manager to a session and a version base
// path such as "/v1".
func NewVServiceManager(s *Session, base string) *VServiceManager {
	return &VServiceManager{Manager: NewManager(s, base)}
}

// keyed copies opts and appends a response key so callers' slices are untouched.
func keyed(opts []CallOption, key string) []CallOption {
	out := make([]CallOption, 0, len(opts)+1)
	out = append(out, opts...)
	return append(out, WithResponseKey(key))
}

func servicePath(id string) string {
	return fmt.Sprintf("/services/%s", url.PathEscape(id))
}

// ListServices returns all services matching search. Empty search values are
// ignored. With detailed set, the detail view is requested.
func (m *VServiceManager) ListServices(ctx context.Context, detailed bool, search map[string]string, opts ...CallOption) ([]Resource, error) {
	path := "/services"
	if detailed {
		path += "/detail"
	}
	out, err := m.List(ctx, path, search, keyed(opts, "resources")...)
	if err != nil {
		return nil, err
	}
	return resources(out), nil
}

// GetService returns a single service.
func (m *VServiceManager) GetService(ctx context.Context, id string, opts ...CallOption) (Resource, error) {
	out, err := m.Get(ctx, servicePath(id), keyed(opts, "resource")...)
	if err != nil {
		return nil, err
	}
	r, _ := out.(map[string]any)
	return r, nil
}

// CreateService creates a service from attrs.
func (m *VServiceManager) CreateService(ctx context.Context, attrs Resource, opts ...CallOption) (Resource, error) {
	out, err := m.Create(ctx, "/services", Resource{"resource": attrs}, keyed(opts, "resource")...)
	if err != nil {
		return nil, err
	}
	r, _ := out.(map[string]any)
	return r, nil
}

// UpdateService changes the given attributes of a service. An empty attrs
// map is a no-op and issues no request.
func (m *VServiceManager) UpdateService(ctx context.Context, id string, attrs Resource, opts ...CallOption) (Resource, error) {
	if len(attrs) == 0 {
		return nil, nil
	}
	out, err := m.Update(ctx, servicePath(id), Resource{"resource": attrs}, keyed(opts, "resource")...)
	if err != nil {
		return nil, err
	}
	r, _ := out.(map[string]any)
	return r, nil
}

// DeleteService deletes a service.
func (m *VServiceManager) DeleteService(ctx context.Context, id string, opts ...CallOption) error {
	_, err := m.Delete(ctx, servicePath(id), opts...)
	return err
}
