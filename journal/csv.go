package journal

import (
	"encoding/csv"
	"os"
	"time"

	"github.com/rustyeddy/desk/pkg/id"
)

// CSV is a Logger that appends entries to a CSV file.
type CSV struct {
	w *csv.Writer
	f *os.File
}

func NewCSV(path string) (*CSV, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)

	if err := w.Write([]string{"id", "time", "name", "category", "message"}); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return &CSV{w: w, f: f}, nil
}

func (j *CSV) Log(name, category, message string) error {
	j.w.Write([]string{
		id.New(),
		time.Now().UTC().Format(time.RFC3339),
		name,
		category,
		message,
	})
	j.w.Flush()
	return j.w.Error()
}

func (j *CSV) Close() error {
	j.w.Flush()
	if err := j.w.Error(); err != nil {
		j.f.Close()
		return err
	}
	return j.f.Close()
}
