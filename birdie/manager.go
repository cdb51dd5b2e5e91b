package birdie

import "context"

// Manager provides CRUD helpers for one resource collection. Paths given to
// its methods are relative to the manager's base path.
type Manager struct {
	session *Session
	base    string
}

// NewManager binds a Manager to a session and a base path such as "/v1".
func NewManager(s *Session, base string) *Manager {
	return &Manager{session: s, base: base}
}

// Session returns the session the manager issues calls on.
func (m *Manager) Session() *Session { return m.session }

// List fetches path with the non-empty query values encoded in key order.
func (m *Manager) List(ctx context.Context, path string, query map[string]string, opts ...CallOption) (any, error) {
	res, err := m.session.Get(ctx, m.base+path+encodeQuery(query), opts...)
	return unwrap(res, err, opts)
}

// Get fetches a single resource.
func (m *Manager) Get(ctx context.Context, path string, opts ...CallOption) (any, error) {
	res, err := m.session.Get(ctx, m.base+path, opts...)
	return unwrap(res, err, opts)
}

// Create posts body to path.
func (m *Manager) Create(ctx context.Context, path string, body any, opts ...CallOption) (any, error) {
	res, err := m.session.Post(ctx, m.base+path, body, opts...)
	return unwrap(res, err, opts)
}

// Update puts body to path.
func (m *Manager) Update(ctx context.Context, path string, body any, opts ...CallOption) (any, error) {
	res, err := m.session.Put(ctx, m.base+path, body, opts...)
	return unwrap(res, err, opts)
}

// Delete removes the resource at path.
func (m *Manager) Delete(ctx context.Context, path string, opts ...CallOption) (any, error) {
	res, err := m.session.Delete(ctx, m.base+path, opts...)
	return unwrap(res, err, opts)
}

func unwrap(res *ResponseEnvelope, err error, opts []CallOption) (any, error) {
	if err != nil {
		return nil, err
	}
	key := buildCallOptions(opts...).responseKey
	if key == "" {
		return res.Body, nil
	}
	if m, ok := res.Body.(map[string]any); ok {
		if v, ok := m[key]; ok {
			return v, nil
		}
	}
	return res.Body, nil
}
