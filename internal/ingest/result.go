package ingest

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/wefrigerator/fridge-ingest/internal/model"
)

// Result is the outcome of one successful provider run. It serializes to
// the trigger response body.
type Result struct {
	Source   string
	Upserted int
	// CountKey names the upstream count field, e.g. "total_elements".
	CountKey string
	Count    int
	// IncludeSites emits sites and org_clusters, even when empty.
	IncludeSites bool
	Sites        []model.Site
	Clusters     []model.OrgCluster
	// FilteredToLA is emitted when set.
	FilteredToLA *int
	Warning      string

	RunID    string
	Dropped  int
	Merged   int
	Duration time.Duration
	DryRun   bool
}

type field struct {
	key   string
	value any
}

// MarshalJSON writes the response fields in a fixed order with the
// provider's count key.
func (r *Result) MarshalJSON() ([]byte, error) {
	fields := []field{
		{"success", true},
		{"source", r.Source},
		{"upserted", r.Upserted},
		{r.CountKey, r.Count},
	}
	if r.IncludeSites {
		fields = append(fields,
			field{"sites", nonNil(r.Sites)},
			field{"org_clusters", nonNil(r.Clusters)},
		)
	}
	if r.FilteredToLA != nil {
		fields = append(fields, field{"filtered_to_la", *r.FilteredToLA})
	}
	if r.Warning != "" {
		fields = append(fields, field{"warning", r.Warning})
	}
	return marshalOrdered(fields)
}

func marshalOrdered(fields []field) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ErrorResponse is the body of a failed run.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
