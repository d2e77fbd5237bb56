// Package runlog writes the records a run leaves behind: the YAML summary,
// the whitelist of constructs and an optional metrics textfile.
package runlog

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/shenwei356/xopen"
	"gopkg.in/yaml.v3"

	"github.com/noamteyssier/pipspeak/internal/pipeline"
)

type Parameters struct {
	Offset        int    `yaml:"offset"`
	UMILen        int    `yaml:"umi_len"`
	ExactMatching bool   `yaml:"exact_matching"`
	BarcodeOnly   bool   `yaml:"barcode_only"`
	Version       string `yaml:"pipspeak_version"`
}

type FileIO struct {
	ReadPathR1  string `yaml:"readpath_r1"`
	ReadPathR2  string `yaml:"readpath_r2"`
	WritePathR1 string `yaml:"writepath_r1"`
	WritePathR2 string `yaml:"writepath_r2"`
	Whitelist   string `yaml:"whitelist"`
}

type Timing struct {
	Timestamp   string  `yaml:"timestamp"`
	ElapsedTime float64 `yaml:"elapsed_time"`
}

// Log holds the information about a run.
type Log struct {
	Parameters Parameters       `yaml:"parameters"`
	FileIO     FileIO           `yaml:"file_io"`
	Statistics pipeline.Summary `yaml:"statistics"`
	Timing     Timing           `yaml:"timing"`
}

// New stamps the log with the run's start time and how long it took.
func New(params Parameters, files FileIO, stats pipeline.Summary, start, end time.Time) *Log {
	return &Log{
		Parameters: params,
		FileIO:     files,
		Statistics: stats,
		Timing: Timing{
			Timestamp:   start.Format(time.RFC3339),
			ElapsedTime: end.Sub(start).Seconds(),
		},
	}
}

func (l *Log) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(l); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (l *Log) WriteTo(w io.Writer) (int64, error) {
	data, err := l.Marshal()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

func (l *Log) WriteFile(filename string) error {
	data, err := l.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}

// WriteWhitelist writes one construct per line. A .gz path is compressed.
func WriteWhitelist(filename string, constructs []string) (err error) {
	fh, err := xopen.Wopen(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := fh.Close(); err == nil {
			err = cerr
		}
	}()
	for _, c := range constructs {
		if _, err = fh.WriteString(c); err != nil {
			return err
		}
		if err = fh.WriteByte('\n'); err != nil {
			return err
		}
	}
	return nil
}
