package contract

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// maxSampleDepth bounds recursion through nested and self-referencing schemas
const maxSampleDepth = 5

// maxSampleLength caps strings padded up to a schema's minLength
const maxSampleLength = 1024

// methodOrder is the order operations of one path are turned into cases
var methodOrder = []string{
	http.MethodGet,
	http.MethodPut,
	http.MethodPost,
	http.MethodDelete,
	http.MethodOptions,
	http.MethodHead,
	http.MethodPatch,
	http.MethodTrace,
}

// skippedHeaders are never synthesized from header parameters
var skippedHeaders = map[string]bool{
	"authorization": true,
	"content-type":  true,
	"accept":        true,
}

// Case is one request derived from an OpenAPI operation
type Case struct {
	OperationID  string            `json:"operation_id,omitempty"`
	Method       string            `json:"method"`
	PathTemplate string            `json:"path_template"`
	Path         string            `json:"path"`
	Query        url.Values        `json:"query,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
	Body         any               `json:"body,omitempty"`
}

// String identifies the case by method and templated path
func (c Case) String() string {
	return c.Method + " " + c.PathTemplate
}

// Target returns the rendered path with its query string
func (c Case) Target() string {
	if len(c.Query) == 0 {
		return c.Path
	}
	return c.Path + "?" + c.Query.Encode()
}

// Cases derives the cases of the loaded document
func (s *Spec) Cases() []Case {
	return BuildCases(s.Doc)
}

// BuildCases derives one case per operation. Paths are visited in
// lexicographic order and methods in methodOrder, so the result is stable.
func BuildCases(doc *openapi3.T) []Case {
	if doc == nil || doc.Paths == nil {
		return nil
	}

	items := doc.Paths.Map()
	paths := make([]string, 0, len(items))
	for p := range items {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	var cases []Case
	for _, p := range paths {
		item := items[p]
		if item == nil {
			continue
		}
		for _, method := range methodOrder {
			op := item.GetOperation(method)
			if op == nil {
				continue
			}
			cases = append(cases, buildCase(p, method, mergeParameters(item.Parameters, op.Parameters), op))
		}
	}
	return cases
}

// mergeParameters applies operation parameters over path-level ones with the
// same name and location.
func mergeParameters(pathLevel, opLevel openapi3.Parameters) []*openapi3.Parameter {
	var out []*openapi3.Parameter
	index := make(map[string]int)

	add := func(params openapi3.Parameters) {
		for _, ref := range params {
			if ref == nil || ref.Value == nil {
				continue
			}
			key := ref.Value.In + ":" + ref.Value.Name
			if i, ok := index[key]; ok {
				out[i] = ref.Value
				continue
			}
			index[key] = len(out)
			out = append(out, ref.Value)
		}
	}
	add(pathLevel)
	add(opLevel)
	return out
}

func buildCase(pathTemplate, method string, params []*openapi3.Parameter, op *openapi3.Operation) Case {
	c := Case{
		OperationID:  op.OperationID,
		Method:       method,
		PathTemplate: pathTemplate,
		Path:         pathTemplate,
	}

	for _, p := range params {
		switch p.In {
		case openapi3.ParameterInPath:
			value := url.PathEscape(fmt.Sprint(parameterValue(p)))
			c.Path = strings.ReplaceAll(c.Path, "{"+p.Name+"}", value)
		case openapi3.ParameterInQuery:
			if !p.Required && p.Example == nil {
				continue
			}
			if c.Query == nil {
				c.Query = url.Values{}
			}
			c.Query.Set(p.Name, fmt.Sprint(parameterValue(p)))
		case openapi3.ParameterInHeader:
			if !p.Required || skippedHeaders[strings.ToLower(p.Name)] {
				continue
			}
			if c.Headers == nil {
				c.Headers = make(map[string]string)
			}
			c.Headers[p.Name] = fmt.Sprint(parameterValue(p))
		}
	}

	// undeclared path parameters still need a concrete segment
	c.Path = fillTemplate(c.Path, "1")

	if op.RequestBody != nil && op.RequestBody.Value != nil {
		if media := op.RequestBody.Value.Content.Get("application/json"); media != nil {
			if media.Example != nil {
				c.Body = media.Example
			} else {
				c.Body = sampleSchema(media.Schema, 0)
			}
		}
	}

	return c
}

func fillTemplate(path, value string) string {
	for {
		start := strings.Index(path, "{")
		if start == -1 {
			return path
		}
		end := strings.Index(path[start:], "}")
		if end == -1 {
			return path
		}
		path = path[:start] + value + path[start+end+1:]
	}
}

// parameterValue picks example, then the first named example, then a value
// synthesized from the schema.
func parameterValue(p *openapi3.Parameter) any {
	if p.Example != nil {
		return p.Example
	}
	if len(p.Examples) > 0 {
		names := make([]string, 0, len(p.Examples))
		for name := range p.Examples {
			names = append(names, name)
		}
		slices.Sort(names)
		if ex := p.Examples[names[0]]; ex != nil && ex.Value != nil && ex.Value.Value != nil {
			return ex.Value.Value
		}
	}
	if v := sampleSchema(p.Schema, 0); v != nil {
		return v
	}
	return "1"
}

// sampleSchema builds a value satisfying the common constraints of a schema:
// example, default, enum, then a placeholder by type and format.
func sampleSchema(ref *openapi3.SchemaRef, depth int) any {
	if ref == nil || ref.Value == nil || depth > maxSampleDepth {
		return nil
	}
	s := ref.Value

	switch {
	case s.Example != nil:
		return s.Example
	case s.Default != nil:
		return s.Default
	case len(s.Enum) > 0:
		return s.Enum[0]
	case len(s.AllOf) > 0:
		merged := map[string]any{}
		for _, part := range s.AllOf {
			if obj, ok := sampleSchema(part, depth+1).(map[string]any); ok {
				for k, v := range obj {
					merged[k] = v
				}
			}
		}
		return merged
	case len(s.OneOf) > 0:
		return sampleSchema(s.OneOf[0], depth+1)
	case len(s.AnyOf) > 0:
		return sampleSchema(s.AnyOf[0], depth+1)
	}

	switch {
	case s.Type.Is(openapi3.TypeString):
		return sampleString(s)
	case s.Type.Is(openapi3.TypeInteger):
		if s.Min != nil {
			return int64(math.Ceil(*s.Min))
		}
		return int64(1)
	case s.Type.Is(openapi3.TypeNumber):
		if s.Min != nil {
			return *s.Min
		}
		return 1.0
	case s.Type.Is(openapi3.TypeBoolean):
		return true
	case s.Type.Is(openapi3.TypeArray):
		if item := sampleSchema(s.Items, depth+1); item != nil {
			return []any{item}
		}
		return []any{}
	case s.Type.Is(openapi3.TypeObject), len(s.Properties) > 0:
		obj := make(map[string]any, len(s.Properties))
		for name, prop := range s.Properties {
			if v := sampleSchema(prop, depth+1); v != nil {
				obj[name] = v
			}
		}
		return obj
	}
	return nil
}

func sampleString(s *openapi3.Schema) string {
	var v string
	switch s.Format {
	case "email":
		v = "user@example.com"
	case "uuid":
		v = "00000000-0000-4000-8000-000000000000"
	case "date":
		v = "2024-01-01"
	case "date-time":
		v = "2024-01-01T00:00:00Z"
	case "uri", "url":
		v = "https://example.com"
	case "password":
		v = "password123"
	default:
		v = "string"
	}
	if n := min(s.MinLength, maxSampleLength); n > uint64(len(v)) {
		v += strings.Repeat("a", int(n)-len(v))
	}
	if s.MaxLength != nil && uint64(len(v)) > *s.MaxLength {
		v = v[:*s.MaxLength]
	}
	return v
}
