// Command pipspeak corrects the combinatorial barcodes of paired-end reads and
// rewrites read 1 as the canonical barcode followed by its UMI.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/klauspost/pgzip"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

type options struct {
	r1, r2      string
	prefix      string
	config      string
	offset      int
	umiLen      int
	exact       bool
	barcodeOnly bool

	whitelist     string
	logFile       string
	metrics       string
	quiet         bool
	progress      bool
	compressLevel int
	logLevel      string

	cpuprofile string
	memprofile string
}

func rootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "pipspeak",
		Short: "Barcode correction and construct rebuilding for combinatorial barcoded reads",
		Long: `pipspeak matches the four barcode segments at the start of R1, correcting
single substitutions, and writes R1 as the canonical barcodes followed by the
UMI. R2 is written unchanged. Pairs missing a segment are dropped and counted.

Outputs: <prefix>_R1.fq.gz, <prefix>_R2.fq.gz, <prefix>_whitelist.txt and
<prefix>_log.yaml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			log.SetLevel(level)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.r1, "r1", "i", "", "Input file for R1")
	f.StringVarP(&opts.r2, "r2", "I", "", "Input file for R2")
	f.StringVarP(&opts.prefix, "prefix", "p", "", "Output file prefix (output files will be named <prefix>_R[12].fq.gz)")
	f.StringVarP(&opts.config, "config", "c", "", "YAML config describing the file paths of the 4 barcodes and the spacers")
	f.IntVarP(&opts.offset, "offset", "s", 5, "How far from the start of R1 the first barcode may begin")
	f.IntVarP(&opts.umiLen, "umi-len", "u", 12, "Length of the UMI")
	f.BoolVarP(&opts.exact, "exact", "x", false, "Only accept exact barcode matches")
	f.BoolVarP(&opts.barcodeOnly, "barcode-only", "b", false, "Leave spacers out of the rebuilt R1")
	f.StringVar(&opts.whitelist, "whitelist", "", "Whitelist output (default <prefix>_whitelist.txt)")
	f.StringVar(&opts.logFile, "log", "", "Run log output (default <prefix>_log.yaml)")
	f.StringVar(&opts.metrics, "metrics", "", "Write run metrics to this node_exporter textfile")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "Do not echo the run log to stderr")
	f.BoolVar(&opts.progress, "progress", false, "Show a progress counter on stderr")
	f.IntVar(&opts.compressLevel, "compress-level", pgzip.DefaultCompression, "Gzip level of the read outputs (1-9, -1 for default)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	f.StringVar(&opts.cpuprofile, "cpuprofile", "", "write cpu profile to `file`")
	f.StringVar(&opts.memprofile, "memprofile", "", "write memory profile to `file`")
	for _, name := range []string{"r1", "r2", "prefix", "config"} {
		cmd.MarkFlagRequired(name)
	}

	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.AddCommand(versionCommand())
	return cmd
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pipspeak version %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "Go version: %s\n", runtime.Version())
			fmt.Fprintf(cmd.OutOrStdout(), "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func main() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if err := rootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}
