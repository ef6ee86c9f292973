package task

// ExportSchemaVersion is written in every export header.
const ExportSchemaVersion = "1.0"

// ExportHeader is the first record of an export file: the first line of
// JSONL or the first document of a YAML stream.
type ExportHeader struct {
	FlowExport    bool   `json:"_flow_export" yaml:"flow_export"`
	SchemaVersion string `json:"schema_version" yaml:"schema_version"`
	ExportedAt    int64  `json:"exported_at" yaml:"exported_at"`
}

// NewExportHeader returns a header stamped with exportedAt.
func NewExportHeader(exportedAt int64) ExportHeader {
	return ExportHeader{
		FlowExport:    true,
		SchemaVersion: ExportSchemaVersion,
		ExportedAt:    exportedAt,
	}
}
