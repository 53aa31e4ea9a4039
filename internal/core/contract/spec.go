package contract

import (
	"context"
	"errors"
	"fmt"

	"github.com/Octrafic/qakit/internal/infra/storage"
	"github.com/getkin/kin-openapi/openapi3"
)

// ErrInvalidSpec marks every failure to load or validate the OpenAPI document
var ErrInvalidSpec = errors.New("invalid OpenAPI specification")

// Spec is a loaded and validated OpenAPI document
type Spec struct {
	Path string
	Hash string
	Doc  *openapi3.T
}

// LoadSpec reads the document at path, resolves local references and runs
// the OpenAPI validator. Remote references are refused.
func LoadSpec(ctx context.Context, path string) (*Spec, error) {
	if err := storage.ValidateFilePath(path); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	loader.IsExternalRefsAllowed = false

	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}

	hash, err := storage.ComputeFileHash(path)
	if err != nil {
		return nil, err
	}

	return &Spec{Path: path, Hash: hash, Doc: doc}, nil
}

// Version returns the openapi field of the document
func (s *Spec) Version() string {
	return s.Doc.OpenAPI
}
