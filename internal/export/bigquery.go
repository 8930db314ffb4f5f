package export

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	cbigquery "cloud.google.com/go/bigquery"
	"github.com/sethvargo/go-retry"
	"google.golang.org/api/googleapi"
)

const (
	insertChunkSize      = 500
	insertMaxRetries     = 3
	insertInitialBackoff = 250 * time.Millisecond
	insertMaximumBackoff = 2 * time.Second
)

// bigQueryStore is the slice of the shared BigQuery client the sink needs.
type bigQueryStore interface {
	EnsureTable(ctx context.Context, table string, schema cbigquery.Schema) error
	InsertRows(ctx context.Context, table string, rows []any) error
}

// BigQuerySink streams export rows into dataset tables, creating each table
// on first use. Partitioned tables keep their day as an extra DATE column
// since there is no path to encode it in.
type BigQuerySink struct {
	store   bigQueryStore
	prefix  string
	ensured map[string]bool
}

// NewBigQuerySink wires the sink to a shared client; prefix is prepended to
// every table name and may be empty.
func NewBigQuerySink(store bigQueryStore, prefix string) (*BigQuerySink, error) {
	if store == nil {
		return nil, fmt.Errorf("bigquery client is required")
	}
	return &BigQuerySink{
		store:   store,
		prefix:  prefix,
		ensured: make(map[string]bool),
	}, nil
}

// WriteTable inserts the rows in chunks with bounded exponential backoff on
// transient failures.
func (s *BigQuerySink) WriteTable(ctx context.Context, t Table, day string, rows [][]any) error {
	name := s.prefix + t.Name

	if !s.ensured[name] {
		if err := s.store.EnsureTable(ctx, name, tableSchema(t)); err != nil {
			return err
		}
		s.ensured[name] = true
	}

	savers := make([]any, len(rows))
	for i, row := range rows {
		values := make(map[string]cbigquery.Value, len(t.Columns)+1)
		for j, c := range t.Columns {
			values[c.Name] = row[j]
		}
		if t.Partitioned() {
			values[t.PartitionColumn] = day
		}
		savers[i] = rowSaver(values)
	}

	for start := 0; start < len(savers); start += insertChunkSize {
		end := min(start+insertChunkSize, len(savers))
		if err := s.insertWithRetry(ctx, name, savers[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *BigQuerySink) insertWithRetry(ctx context.Context, table string, rows []any) error {
	backoff := retry.WithCappedDuration(insertMaximumBackoff,
		retry.WithMaxRetries(insertMaxRetries, retry.NewExponential(insertInitialBackoff)))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := s.store.InsertRows(ctx, table, rows)
		if err == nil {
			return nil
		}
		if isRetryableInsertError(err) {
			return retry.RetryableError(err)
		}
		return fmt.Errorf("inserting %s rows: %w", table, err)
	})
}

func tableSchema(t Table) cbigquery.Schema {
	schema := make(cbigquery.Schema, 0, len(t.Columns)+1)
	for _, c := range t.Columns {
		schema = append(schema, &cbigquery.FieldSchema{
			Name:     c.Name,
			Type:     fieldType(c.Kind),
			Required: !c.Nullable,
		})
	}
	if t.Partitioned() {
		schema = append(schema, &cbigquery.FieldSchema{
			Name:     t.PartitionColumn,
			Type:     cbigquery.DateFieldType,
			Required: true,
		})
	}
	return schema
}

func fieldType(k Kind) cbigquery.FieldType {
	switch k {
	case KindInt64:
		return cbigquery.IntegerFieldType
	case KindFloat64:
		return cbigquery.FloatFieldType
	case KindBool:
		return cbigquery.BooleanFieldType
	case KindTime:
		return cbigquery.TimestampFieldType
	default:
		return cbigquery.StringFieldType
	}
}

// rowSaver adapts a value map to the streaming insert interface with
// best-effort de-duplication left to BigQuery (no insert id).
type rowSaver map[string]cbigquery.Value

func (r rowSaver) Save() (map[string]cbigquery.Value, string, error) {
	return r, "", nil
}

func isRetryableInsertError(err error) bool {
	if err == nil {
		return false
	}

	var pme cbigquery.PutMultiError
	if errors.As(err, &pme) {
		if len(pme) == 0 {
			return false
		}
		for _, rowErr := range pme {
			if !allRetryable(rowErr.Errors) {
				return false
			}
		}
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return isRetryableHTTPCode(apiErr.Code)
	}
	return false
}

func allRetryable(errs cbigquery.MultiError) bool {
	if len(errs) == 0 {
		return false
	}
	for _, err := range errs {
		var e *cbigquery.Error
		if !errors.As(err, &e) {
			return false
		}
		// The insert API reports transient per-row failures with these
		// reasons; anything else is a schema or data problem.
		if e.Reason != "backendError" && e.Reason != "rateLimitExceeded" && e.Reason != "timeout" {
			return false
		}
	}
	return true
}

func isRetryableHTTPCode(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusRequestTimeout,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
