package pipeline

import (
	"github.com/abdul-hamid-achik/hitdesk/packages/core/env"
	"github.com/abdul-hamid-achik/hitdesk/packages/core/request"
)

// Resolve returns a copy of t with every {{KEY}} substituted through r.
// Disabled params and headers are dropped from the result; unknown references
// are left intact. Auth leaves are visited through Auth.Fields so each variant
// is resolved by the same traversal.
func Resolve(t *request.Template, r *env.Resolver) *request.Template {
	out := &request.Template{
		Method:  t.Method,
		URL:     r.Resolve(t.URL),
		Params:  resolveRows(t.Params, r),
		Headers: resolveRows(t.Headers, r),
		Body:    r.Resolve(t.Body),
		Auth:    t.Auth,
	}
	for _, f := range out.Auth.Fields() {
		*f.Value = r.Resolve(*f.Value)
	}
	return out
}

func resolveRows(rows []request.KeyValue, r *env.Resolver) []request.KeyValue {
	out := make([]request.KeyValue, 0, len(rows))
	for _, kv := range rows {
		if !kv.Enabled {
			continue
		}
		out = append(out, request.KeyValue{
			Key:     r.Resolve(kv.Key),
			Value:   r.Resolve(kv.Value),
			Enabled: true,
		})
	}
	return out
}
