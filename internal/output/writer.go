package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/zx06/minke/internal/errors"
)

// TableFormatter 由需要以表格/CSV 输出的数据实现。
// ok=false 表示该值不适合表格展示，回退到通用渲染。
type TableFormatter interface {
	ToTableData() (columns []string, rows []map[string]any, ok bool)
}

// RowNoun 可选：表格末尾计数使用的名词（复数），默认 rows。
type RowNoun interface {
	RowNoun() string
}

type Writer struct {
	Out io.Writer
	Err io.Writer
}

func New(out, err io.Writer) Writer {
	return Writer{Out: out, Err: err}
}

func (w Writer) WriteOK(format Format, data any) error {
	return w.write(format, Envelope{OK: true, SchemaVersion: SchemaVersion, Data: data})
}

func (w Writer) WriteError(format Format, xe *errors.XError) error {
	errObj := &ErrorObject{Code: xe.Code, Message: xe.Message, Details: xe.Details}
	return w.write(format, Envelope{OK: false, SchemaVersion: SchemaVersion, Error: errObj})
}

func (w Writer) write(format Format, env Envelope) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w.Out)
		enc.SetEscapeHTML(false)
		return enc.Encode(env)
	case FormatYAML:
		b, err := yaml.Marshal(env)
		if err != nil {
			return err
		}
		if _, err := w.Out.Write(b); err != nil {
			return err
		}
		if len(b) == 0 || b[len(b)-1] != '\n' {
			_, _ = w.Out.Write([]byte("\n"))
		}
		return nil
	case FormatTable:
		return writeTable(w.Out, env)
	case FormatCSV:
		return writeCSV(w.Out, env)
	default:
		return errors.New(errors.CodeCfgInvalid, "invalid output format", map[string]any{"format": string(format)})
	}
}

func writeTable(out io.Writer, env Envelope) error {
	tw := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	if !env.OK {
		if env.Error != nil {
			_, _ = fmt.Fprintf(tw, "error.code\t%s\n", env.Error.Code)
			_, _ = fmt.Fprintf(tw, "error.message\t%s\n", env.Error.Message)
			for _, k := range sortedKeys(env.Error.Details) {
				_, _ = fmt.Fprintf(tw, "error.details.%s\t%s\n", k, formatCellValue(env.Error.Details[k]))
			}
		}
		return tw.Flush()
	}

	if cols, rows, ok := tableData(env.Data); ok {
		_, _ = fmt.Fprintln(tw, strings.Join(cols, "\t"))
		seps := make([]string, len(cols))
		for i, c := range cols {
			seps[i] = strings.Repeat("-", len(c))
		}
		_, _ = fmt.Fprintln(tw, strings.Join(seps, "\t"))
		for _, row := range rows {
			cells := make([]string, len(cols))
			for i, c := range cols {
				cells[i] = formatCellValue(row[c])
			}
			_, _ = fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		_, err := fmt.Fprintf(out, "\n(%d %s)\n", len(rows), rowNoun(env.Data))
		return err
	}

	switch d := env.Data.(type) {
	case nil:
	case map[string]any:
		for _, k := range sortedKeys(d) {
			_, _ = fmt.Fprintf(tw, "%s\t%s\n", k, formatCellValue(d[k]))
		}
	default:
		b, _ := json.MarshalIndent(d, "", "  ")
		_, _ = fmt.Fprintln(tw, string(b))
	}
	return tw.Flush()
}

func writeCSV(out io.Writer, env Envelope) error {
	cw := csv.NewWriter(out)
	defer cw.Flush()
	if !env.OK {
		_ = cw.Write([]string{"ok", "false"})
		if env.Error != nil {
			_ = cw.Write([]string{"error.code", string(env.Error.Code)})
			_ = cw.Write([]string{"error.message", env.Error.Message})
		}
		cw.Flush()
		return cw.Error()
	}

	if cols, rows, ok := tableData(env.Data); ok {
		_ = cw.Write(cols)
		for _, row := range rows {
			rec := make([]string, len(cols))
			for i, c := range cols {
				if row[c] != nil {
					rec[i] = formatCellValue(row[c])
				}
			}
			_ = cw.Write(rec)
		}
		cw.Flush()
		return cw.Error()
	}

	// 非表格数据：key,value（仅作为人类可读占位；结构化场景建议用 json/yaml）
	if m, ok := env.Data.(map[string]any); ok {
		for _, k := range sortedKeys(m) {
			_ = cw.Write([]string{k, formatCellValue(m[k])})
		}
	}
	cw.Flush()
	return cw.Error()
}

func tableData(data any) ([]string, []map[string]any, bool) {
	tf, ok := data.(TableFormatter)
	if !ok {
		return nil, nil, false
	}
	return tf.ToTableData()
}

func rowNoun(data any) string {
	if n, ok := data.(RowNoun); ok && n.RowNoun() != "" {
		return n.RowNoun()
	}
	return "rows"
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatCellValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "<null>"
	case string:
		return x
	case []string:
		return strings.Join(x, ",")
	case []byte:
		return string(x)
	case fmt.Stringer:
		return x.String()
	case bool, int, int64, float64:
		return fmt.Sprint(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}
