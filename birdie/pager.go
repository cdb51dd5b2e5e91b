package birdie

import (
	"context"
	"fmt"
	"strconv"
)

// Pager iterates through services using repeated list calls.
// It maintains limit/marker state and stops when no services are returned.
type Pager struct {
	Services *VServiceManager
	Detailed bool
	Search   map[string]string
	Limit    int
	Marker   string
	Done     bool
}

// Next returns the next batch of services, or nil when iteration finishes.
func (p *Pager) Next(ctx context.Context) ([]Resource, error) {
	if p.Done {
		return nil, nil
	}
	q := make(map[string]string, len(p.Search)+2)
	for k, v := range p.Search {
		q[k] = v
	}
	if p.Limit > 0 {
		q["limit"] = strconv.Itoa(p.Limit)
	}
	q["marker"] = p.Marker

	page, err := p.Services.ListServices(ctx, p.Detailed, q)
	if err != nil {
		return nil, err
	}
	if len(page) == 0 {
		p.Done = true
		return nil, nil
	}
	id, ok := page[len(page)-1]["id"]
	if !ok {
		p.Done = true
		return page, nil
	}
	p.Marker = marker(id)
	if p.Limit > 0 && len(page) < p.Limit {
		p.Done = true
	}
	return page, nil
}

// marker renders a decoded id as it appeared on the wire. JSON numbers decode
// to float64 and must not be printed in exponent form.
func marker(id any) string {
	switch v := id.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
