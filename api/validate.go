package api

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/garnizeh/buddyup/pkg/apperr"
	"github.com/qri-io/jsonschema"
)

const maxBodyBytes = 1 << 20

//go:embed schemas/*.json
var schemaFiles embed.FS

// requestSchemas holds the compiled request body schemas keyed by file name
// without extension.
var requestSchemas = mustLoadSchemas(schemaFiles)

func loadSchemas(fsys fs.FS) (map[string]*jsonschema.Schema, error) {
	files, err := fs.Glob(fsys, "schemas/*.json")
	if err != nil {
		return nil, err
	}

	out := make(map[string]*jsonschema.Schema, len(files))
	for _, f := range files {
		raw, err := fs.ReadFile(fsys, f)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", f, err)
		}
		rs := &jsonschema.Schema{}
		if err := json.Unmarshal(raw, rs); err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", f, err)
		}
		out[strings.TrimSuffix(path.Base(f), ".json")] = rs
	}
	return out, nil
}

func mustLoadSchemas(fsys fs.FS) map[string]*jsonschema.Schema {
	s, err := loadSchemas(fsys)
	if err != nil {
		panic(err)
	}
	return s
}

// validateBody checks raw JSON against the named schema.
func validateBody(ctx context.Context, schema string, body []byte) error {
	rs, ok := requestSchemas[schema]
	if !ok {
		return apperr.Internal("unknown request schema "+schema, nil)
	}

	keyErrs, err := rs.ValidateBytes(ctx, body)
	if err != nil {
		return apperr.InvalidArg("invalid json")
	}
	if len(keyErrs) == 0 {
		return nil
	}

	msgs := make([]string, 0, len(keyErrs))
	for _, ke := range keyErrs {
		if ke.PropertyPath != "" && ke.PropertyPath != "/" {
			msgs = append(msgs, ke.PropertyPath+": "+ke.Message)
		} else {
			msgs = append(msgs, ke.Message)
		}
	}
	return apperr.InvalidArg("invalid request: " + strings.Join(msgs, "; "))
}

// decodeBody reads the request body, validates it against schema and
// unmarshals it into dst.
func decodeBody(r *http.Request, schema string, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return apperr.InvalidArg("cannot read request body")
	}
	if err := validateBody(r.Context(), schema, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperr.InvalidArg("invalid json")
	}
	return nil
}
