package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/klauspost/pgzip"
	log "github.com/sirupsen/logrus"

	"github.com/noamteyssier/pipspeak/internal/config"
	"github.com/noamteyssier/pipspeak/internal/fastq"
	"github.com/noamteyssier/pipspeak/internal/pipeline"
	"github.com/noamteyssier/pipspeak/internal/runlog"
)

const writerCache = 1024

const progressTemplate = `{{string . "prefix"}}{{counters . }} {{speed . "%s pairs/s"}} {{etime . }}`

func (o *options) validate() error {
	if o.offset < 0 {
		return fmt.Errorf("--offset must be >= 0, got %d", o.offset)
	}
	if o.umiLen < 0 {
		return fmt.Errorf("--umi-len must be >= 0, got %d", o.umiLen)
	}
	if o.compressLevel < pgzip.DefaultCompression || o.compressLevel > pgzip.BestCompression {
		return fmt.Errorf("--compress-level must be between %d and %d, got %d", pgzip.DefaultCompression, pgzip.BestCompression, o.compressLevel)
	}
	return nil
}

func (o *options) outputs() runlog.FileIO {
	files := runlog.FileIO{
		ReadPathR1:  o.r1,
		ReadPathR2:  o.r2,
		WritePathR1: o.prefix + "_R1.fq.gz",
		WritePathR2: o.prefix + "_R2.fq.gz",
		Whitelist:   o.whitelist,
	}
	if files.Whitelist == "" {
		files.Whitelist = o.prefix + "_whitelist.txt"
	}
	return files
}

func run(opts *options) error {
	if err := opts.validate(); err != nil {
		return err
	}
	start := time.Now()

	if opts.cpuprofile != "" {
		f, err := os.Create(opts.cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	log.Info("Reading configuration")
	cfg, err := config.ReadFile(opts.config)
	if err != nil {
		return fmt.Errorf("could not read config file: %w", err)
	}
	sets, err := cfg.LoadSets(opts.exact)
	if err != nil {
		return err
	}
	for i, set := range sets {
		log.Infof("bc%d: %s barcodes of length %d, %s matchable sequences",
			i+1, humanize.Comma(int64(set.Size())), set.Len(), humanize.Comma(int64(set.LookupSize())))
	}

	files := opts.outputs()
	src, err := fastq.OpenPair(opts.r1, opts.r2)
	if err != nil {
		return err
	}
	defer src.Close()

	w1, err := fastq.NewRecordWriter(files.WritePathR1, opts.compressLevel, writerCache)
	if err != nil {
		return err
	}
	w2, err := fastq.NewRecordWriter(files.WritePathR2, opts.compressLevel, writerCache)
	if err != nil {
		w1.Close()
		return err
	}
	closeWriters := func() error {
		return errors.Join(w1.Close(), w2.Close())
	}

	p := pipeline.New(sets, pipeline.Options{
		Offset:        opts.offset,
		UMILen:        opts.umiLen,
		IncludeSpacer: !opts.barcodeOnly,
	})
	stats := pipeline.NewStats()

	var progress func()
	if opts.progress {
		bar := pb.ProgressBarTemplate(progressTemplate).New(0)
		bar.SetWriter(os.Stderr)
		bar.Set("prefix", "read pairs: ")
		bar.Start()
		defer bar.Finish()
		progress = func() { bar.Increment() }
	}

	log.Info("Starting barcode matching")
	if err := pipeline.Run(src, w1, w2, p, stats, progress); err != nil {
		closeWriters()
		return err
	}
	if err := closeWriters(); err != nil {
		return fmt.Errorf("writing reads: %w", err)
	}

	summary := stats.Finalize()
	if err := runlog.WriteWhitelist(files.Whitelist, stats.Whitelist()); err != nil {
		return fmt.Errorf("writing whitelist: %w", err)
	}
	logSummary(summary)

	runLog := runlog.New(runlog.Parameters{
		Offset:        opts.offset,
		UMILen:        opts.umiLen,
		ExactMatching: opts.exact,
		BarcodeOnly:   opts.barcodeOnly,
		Version:       version,
	}, files, summary, start, time.Now())
	logPath := opts.logFile
	if logPath == "" {
		logPath = opts.prefix + "_log.yaml"
	}
	if err := runLog.WriteFile(logPath); err != nil {
		return fmt.Errorf("writing run log: %w", err)
	}
	if !opts.quiet {
		if _, err := runLog.WriteTo(os.Stderr); err != nil {
			return err
		}
	}
	if opts.metrics != "" {
		if err := runlog.WriteMetrics(opts.metrics, summary); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}

	if opts.memprofile != "" {
		f, err := os.Create(opts.memprofile)
		if err != nil {
			return fmt.Errorf("could not create memory profile: %w", err)
		}
		defer f.Close()
		runtime.GC() // get up-to-date statistics
		if err := pprof.WriteHeapProfile(f); err != nil {
			return fmt.Errorf("could not write memory profile: %w", err)
		}
	}
	log.Info("done")
	return nil
}

func logSummary(s pipeline.Summary) {
	log.Infof("Total number of reads: %s", humanize.Comma(int64(s.TotalReads)))
	log.Infof("Number of reads passing: %s", humanize.Comma(int64(s.PassingReads)))
	log.Infof("Percentage of reads passing: %.2f%%", s.FractionPassing*100)
	for i, n := range s.Filtered() {
		log.Infof("Filtered reads missing barcode %d: %s", i+1, humanize.Comma(int64(n)))
	}
	if s.NumShortUMI > 0 {
		log.Infof("  of which matched barcode %d but were too short for the UMI: %s",
			len(s.Filtered()), humanize.Comma(int64(s.NumShortUMI)))
	}
	log.Infof("Distinct constructs: %s", humanize.Comma(int64(s.WhitelistSize)))
}
