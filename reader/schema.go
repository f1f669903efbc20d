package reader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/docsql/document"
)

// SchemaInfo describes one column of an input file. For JSON input a column is
// a path family such as "orders.amount", covering every array element.
type SchemaInfo struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	PhysicalType string `json:"physical_type"`
	LogicalType  string `json:"logical_type"`
	Required     bool   `json:"required"`
	Optional     bool   `json:"optional"`
	Repeated     bool   `json:"repeated"`
}

// Map returns the fields keyed by their JSON names
func (s SchemaInfo) Map() map[string]interface{} {
	return map[string]interface{}{
		"name":          s.Name,
		"type":          s.Type,
		"physical_type": s.PhysicalType,
		"logical_type":  s.LogicalType,
		"required":      s.Required,
		"optional":      s.Optional,
		"repeated":      s.Repeated,
	}
}

// ExtractSchemaInfo describes the columns of the file at path.
//
// Parquet files report their declared schema. For nested types, field names
// use dot notation (e.g., "address.street"). JSON input is read completely and
// described by the value kinds found under each path family.
func ExtractSchemaInfo(path string) ([]SchemaInfo, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = r.Close() }()

	if schema := r.Schema(); schema != nil {
		var infos []SchemaInfo
		for _, field := range schema.Fields() {
			infos = append(infos, parquetFieldInfo(field, "", false)...)
		}
		return infos, nil
	}

	doc, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	return InferSchema(doc)
}

// InferSchema describes a decoded document. Each element of an array document
// counts as one record; an object document is a single record.
func InferSchema(doc any) ([]SchemaInfo, error) {
	rows, err := document.Flatten(doc)
	if err != nil {
		return nil, err
	}

	type family struct {
		kinds    map[document.Kind]bool
		records  int // records holding a non-null value
		repeated bool
	}
	families := make(map[string]*family)

	for _, row := range rows {
		seen := make(map[string]bool)
		for key, v := range row {
			f, ok := families[key.Family]
			if !ok {
				f = &family{kinds: make(map[document.Kind]bool)}
				families[key.Family] = f
			}
			f.kinds[v.Kind()] = true
			if key.Key != key.Family {
				f.repeated = true
			}
			if !v.IsNull() && !seen[key.Family] {
				seen[key.Family] = true
				f.records++
			}
		}
	}

	names := make([]string, 0, len(families))
	for name := range families {
		names = append(names, name)
	}
	sort.Strings(names)

	infos := make([]SchemaInfo, 0, len(names))
	for _, name := range names {
		f := families[name]
		kinds := make([]string, 0, len(f.kinds))
		for k := range f.kinds {
			kinds = append(kinds, k.String())
		}
		sort.Strings(kinds)

		required := f.records == len(rows)
		infos = append(infos, SchemaInfo{
			Name:     name,
			Type:     strings.Join(kinds, "|"),
			Required: required,
			Optional: !required,
			Repeated: f.repeated,
		})
	}
	return infos, nil
}

// parquetFieldInfo recursively describes a field. Groups are not reported
// themselves; their leaves are, and a repeated group marks every leaf below it.
func parquetFieldInfo(field parquet.Field, prefix string, parentRepeated bool) []SchemaInfo {
	name := field.Name()
	if prefix != "" {
		name = prefix + "." + name
	}
	repeated := parentRepeated || field.Repeated()

	if children := field.Fields(); len(children) > 0 {
		var infos []SchemaInfo
		for _, child := range children {
			infos = append(infos, parquetFieldInfo(child, name, repeated)...)
		}
		return infos
	}

	return []SchemaInfo{{
		Name:         name,
		Type:         friendlyType(field),
		PhysicalType: physicalType(field),
		LogicalType:  logicalType(field),
		Required:     field.Required(),
		Optional:     field.Optional(),
		Repeated:     repeated,
	}}
}

var physicalNames = map[parquet.Kind]string{
	parquet.Boolean:           "BOOLEAN",
	parquet.Int32:             "INT32",
	parquet.Int64:             "INT64",
	parquet.Int96:             "INT96",
	parquet.Float:             "FLOAT",
	parquet.Double:            "DOUBLE",
	parquet.ByteArray:         "BYTE_ARRAY",
	parquet.FixedLenByteArray: "FIXED_LEN_BYTE_ARRAY",
}

// physicalType returns the physical type name of a leaf field
func physicalType(field parquet.Field) string {
	if field.Type() == nil {
		return "GROUP"
	}
	if name, ok := physicalNames[field.Type().Kind()]; ok {
		return name
	}
	return "UNKNOWN"
}

// logicalType returns the logical type annotation, if any
func logicalType(field parquet.Field) string {
	if field.Type() == nil || field.Type().LogicalType() == nil {
		return ""
	}
	return field.Type().LogicalType().String()
}

// friendlyType maps parquet's physical and logical types to the simpler names
// shown to users.
func friendlyType(field parquet.Field) string {
	if field.Type() == nil {
		return "GROUP"
	}

	switch lt := logicalType(field); lt {
	case "STRING", "UTF8":
		return "STRING"
	case "ENUM", "UUID", "DATE", "TIME", "TIMESTAMP", "DECIMAL", "JSON", "BSON":
		return lt
	}

	switch field.Type().Kind() {
	case parquet.Float:
		return "FLOAT32"
	case parquet.Double:
		return "FLOAT64"
	default:
		return physicalType(field)
	}
}
