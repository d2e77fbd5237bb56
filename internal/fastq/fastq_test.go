package fastq

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/pgzip"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/xopen"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	fh, err := xopen.Wopen(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fh.WriteString(content); err != nil {
		t.Fatal(err)
	}
	if err := fh.Close(); err != nil {
		t.Fatal(err)
	}
}

func readAll(t *testing.T, path string) []*fastx.Record {
	t.Helper()
	fq, err := fastx.NewDefaultReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer fq.Close()
	var out []*fastx.Record
	for {
		rec, err := fq.Read()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, rec.Clone())
	}
}

func TestPairReader(t *testing.T) {
	dir := t.TempDir()
	r1 := filepath.Join(dir, "r1.fq.gz")
	r2 := filepath.Join(dir, "r2.fq")
	writeFile(t, r1, "@a 1:N\nACGTACGT\n+\nIIIIIIII\n@b 1:N\nGGGG\n+\nHHHH\n@c 1:N\nTTTT\n+\nJJJJ\n")
	writeFile(t, r2, "@a 2:N\nCCCC\n+\nAAAA\n@b 2:N\nNNNN\n+\nBBBB\n")

	pr, err := OpenPair(r1, r2)
	if err != nil {
		t.Fatal(err)
	}
	defer pr.Close()

	want := []struct{ id, seq1, qual1, seq2 string }{
		{"a", "ACGTACGT", "IIIIIIII", "CCCC"},
		{"b", "GGGG", "HHHH", "NNNN"},
	}
	var got []Pair
	for {
		pair, err := pr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, pair)
	}
	// the shorter stream ends iteration for both
	if len(got) != len(want) {
		t.Fatalf("read %d pairs, want %d", len(got), len(want))
	}
	for i, w := range want {
		p := got[i]
		if string(p.R1.ID) != w.id || string(p.R2.ID) != w.id {
			t.Errorf("pair %d ids = %q, %q; want %q", i, p.R1.ID, p.R2.ID, w.id)
		}
		if string(p.R1.Seq.Seq) != w.seq1 || string(p.R1.Seq.Qual) != w.qual1 {
			t.Errorf("pair %d R1 = %q %q", i, p.R1.Seq.Seq, p.R1.Seq.Qual)
		}
		if string(p.R2.Seq.Seq) != w.seq2 {
			t.Errorf("pair %d R2 = %q", i, p.R2.Seq.Seq)
		}
	}
}

func TestOpenPairMissing(t *testing.T) {
	dir := t.TempDir()
	r1 := filepath.Join(dir, "r1.fq")
	writeFile(t, r1, "@a\nACGT\n+\nIIII\n")
	if _, err := OpenPair(r1, filepath.Join(dir, "nope.fq")); err == nil {
		t.Error("OpenPair with a missing R2 succeeded")
	}
}

func TestPairReaderRejectsFasta(t *testing.T) {
	dir := t.TempDir()
	fq := filepath.Join(dir, "r.fq")
	fa := filepath.Join(dir, "r.fa")
	writeFile(t, fq, "@a\nACGT\n+\nIIII\n")
	writeFile(t, fa, ">a\nACGT\n")

	for _, files := range [][2]string{{fa, fq}, {fq, fa}} {
		pr, err := OpenPair(files[0], files[1])
		if err != nil {
			t.Fatal(err)
		}
		if _, err := pr.Next(); !errors.Is(err, ErrNotFastq) {
			t.Errorf("Next(%s, %s): err = %v, want ErrNotFastq", filepath.Base(files[0]), filepath.Base(files[1]), err)
		}
		pr.Close()
	}
}

func TestRecordWriter(t *testing.T) {
	dir := t.TempDir()
	records := []*fastx.Record{
		NewRecord([]byte("a"), []byte("a 1:N:0"), []byte("ACGTAC"), []byte("IIIIII")),
		NewRecord([]byte("b"), []byte("b"), []byte("GG"), []byte("HH")),
		NewRecord([]byte("c"), []byte("c"), []byte("TTTTT"), []byte("JJJJJ")),
	}

	for _, name := range []string{"out.fq.gz", "out.fq"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			// a cache of 2 exercises a mid-stream flush and a final partial batch
			w, err := NewRecordWriter(path, pgzip.BestSpeed, 2)
			if err != nil {
				t.Fatal(err)
			}
			for _, rec := range records {
				if err := w.Write(rec); err != nil {
					t.Fatal(err)
				}
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}
			if err := w.Write(records[0]); !errors.Is(err, ErrClosed) {
				t.Errorf("Write after Close: err = %v, want ErrClosed", err)
			}

			got := readAll(t, path)
			if len(got) != len(records) {
				t.Fatalf("read back %d records, want %d", len(got), len(records))
			}
			for i, rec := range records {
				if string(got[i].Name) != string(rec.Name) ||
					string(got[i].Seq.Seq) != string(rec.Seq.Seq) ||
					string(got[i].Seq.Qual) != string(rec.Seq.Qual) {
					t.Errorf("record %d = %q %q %q", i, got[i].Name, got[i].Seq.Seq, got[i].Seq.Qual)
				}
			}
		})
	}
}

func TestRecordWriterGzipMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.fq.gz")
	w, err := NewRecordWriter(path, pgzip.DefaultCompression, 16)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Write(NewRecord([]byte("a"), []byte("a"), []byte("A"), []byte("I"))); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 2 || data[0] != 0x1f || data[1] != 0x8b {
		t.Errorf("output does not start with the gzip magic: % x", data[:min(len(data), 2)])
	}
}

func TestRecordWriterReportsWriteFailure(t *testing.T) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("no /dev/full on this system")
	}
	w, err := NewRecordWriter("/dev/full", pgzip.DefaultCompression, 1)
	if err != nil {
		t.Fatal(err)
	}
	rec := NewRecord([]byte("a"), []byte("a"), []byte("ACGTACGTACGTACGTACGT"), []byte("IIIIIIIIIIIIIIIIIIII"))
	var werr error
	for i := 0; i < 200000 && werr == nil; i++ {
		werr = w.Write(rec)
	}
	if werr == nil {
		t.Error("Write never reported the failing device")
	}
	if err := w.Close(); err == nil {
		t.Error("Close after a failed write returned nil")
	}
}

func TestRecordWriterBadPath(t *testing.T) {
	if _, err := NewRecordWriter(filepath.Join(t.TempDir(), "no", "such", "dir.fq.gz"), pgzip.DefaultCompression, 8); err == nil {
		t.Error("NewRecordWriter into a missing directory succeeded")
	}
}
