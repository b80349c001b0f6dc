package records

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/parquet-go/parquet-go"
)

const readBatchSize = 256

// readParquet reads every row group of a Parquet file into text cells. Leaf
// columns are named by their dotted path; nulls become empty cells.
func readParquet(dataset, path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, missing(dataset, path, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, unreadable(dataset, path, fmt.Errorf("stat parquet file: %w", err))
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, unreadable(dataset, path, fmt.Errorf("open parquet: %w", err))
	}

	paths := pf.Schema().Columns()
	columns := make([]string, len(paths))
	for i, p := range paths {
		columns[i] = strings.Join(p, ".")
	}

	rows := make([]Row, 0, pf.NumRows())
	buf := make([]parquet.Row, readBatchSize)
	for _, rg := range pf.RowGroups() {
		rr := rg.Rows()
		for {
			n, readErr := rr.ReadRows(buf)
			for _, pr := range buf[:n] {
				row := make(Row, len(columns))
				for _, v := range pr {
					c := v.Column()
					if c < 0 || c >= len(row) || v.IsNull() {
						continue
					}
					row[c] = v.String()
				}
				rows = append(rows, row)
			}
			if readErr == io.EOF {
				break
			}
			if readErr != nil {
				rr.Close()
				return nil, unreadable(dataset, path, fmt.Errorf("read parquet rows: %w", readErr))
			}
			if n == 0 {
				break
			}
		}
		if err := rr.Close(); err != nil {
			return nil, unreadable(dataset, path, err)
		}
	}
	return NewTable(dataset, path, columns, rows), nil
}
