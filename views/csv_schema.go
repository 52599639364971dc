package views

// Exported artifact layout. The column order itself comes from
// models.Sample.CSVHeader; these constants describe the file around it.

const (
	// ExportHeader is the first line of every export.
	ExportHeader = "Time,Acceleration"
	// ExportBaseName is the suggested file name offered to the user.
	ExportBaseName = "accelerationData"
	// ExportExt is appended to ExportBaseName on disk.
	ExportExt = ".csv"
	// ExportContentType is the plain-text media type of the export.
	ExportContentType = "text/plain; charset=utf-8"
)
