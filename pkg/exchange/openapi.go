package exchange

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// OpenAPIFileName is the download name of the OpenAPI rendition of a form.
const OpenAPIFileName = "form.openapi.json"

// RecordSchemaName is the component schema describing one saved record.
const RecordSchemaName = "Record"

// OpenAPIInfo titles the generated document.
type OpenAPIInfo struct {
	Title       string
	Version     string
	Description string
}

// BuildOpenAPI describes the form as an OpenAPI 3 document: a Record schema
// with one property per field label and a POST /records operation accepting
// it.
func BuildOpenAPI(fields []model.Field, info OpenAPIInfo) *openapi3.T {
	if info.Title == "" {
		info.Title = "Form records"
	}
	if info.Version == "" {
		info.Version = "1.0.0"
	}

	record := openapi3.NewObjectSchema()
	for _, field := range fields {
		record.WithProperty(field.Label, fieldSchema(field))
	}

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{
		RecordSchemaName: openapi3.NewSchemaRef("", record),
	}

	recordRef := openapi3.NewSchemaRef("#/components/schemas/"+RecordSchemaName, record)
	operation := openapi3.NewOperation()
	operation.OperationID = "saveRecord"
	operation.Summary = "Save a filled form as a record"
	operation.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(recordRef),
	}
	operation.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusCreated, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("Record saved"),
		}),
	)

	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       info.Title,
			Version:     info.Version,
			Description: info.Description,
		},
		Paths: openapi3.NewPaths(
			openapi3.WithPath("/records", &openapi3.PathItem{Post: operation}),
		),
		Components: &components,
	}
}

// ExportFieldsOpenAPI renders BuildOpenAPI as a downloadable JSON document.
func ExportFieldsOpenAPI(fields []model.Field, info OpenAPIInfo) (File, error) {
	if len(fields) == 0 {
		return File{}, ErrNoFields
	}
	data, err := json.MarshalIndent(BuildOpenAPI(fields, info), "", "  ")
	if err != nil {
		return File{}, fmt.Errorf("exchange: encode openapi: %w", err)
	}
	return File{Name: OpenAPIFileName, ContentType: "application/json", Data: data}, nil
}

func fieldSchema(field model.Field) *openapi3.Schema {
	var schema *openapi3.Schema
	switch field.Type {
	case model.FieldTypeNumber:
		schema = openapi3.NewFloat64Schema()
	case model.FieldTypeDate:
		schema = openapi3.NewStringSchema().WithFormat("date")
	case model.FieldTypeCheckbox:
		schema = openapi3.NewBoolSchema()
	case model.FieldTypeSelect:
		schema = openapi3.NewStringSchema()
		if len(field.Options) > 0 {
			values := make([]any, len(field.Options))
			for i, option := range field.Options {
				values[i] = option
			}
			schema = schema.WithEnum(values...)
		}
	default:
		schema = openapi3.NewStringSchema()
	}
	schema.Title = field.Label
	schema.Extensions = map[string]any{"x-field-id": field.ID, "x-field-type": string(field.Type)}
	return schema
}
