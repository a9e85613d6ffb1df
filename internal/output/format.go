package output

type Format string

const (
	FormatAuto  Format = "auto"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
)

// Formats lists every accepted --format value.
var Formats = []Format{FormatAuto, FormatJSON, FormatYAML, FormatTable, FormatCSV}

func IsValid(f Format) bool {
	for _, v := range Formats {
		if v == f {
			return true
		}
	}
	return false
}

// Human reports whether f is meant to be read by a person rather than parsed.
func (f Format) Human() bool {
	return f == FormatTable
}
