// Command inflate decompresses a zlib-compressed file, optionally
// extracting just a range of the uncompressed data.
package main

import (
	"flag"
	"io"
	"io/ioutil"
	"os"

	"github.com/coreos/pkg/capnslog"

	"github.com/coreos/inflate/flagutil"
	"github.com/coreos/inflate/yamlutil"
	"github.com/coreos/inflate/zidx"
	"github.com/coreos/inflate/zlib"
)

var plog = capnslog.NewPackageLogger("github.com/coreos/inflate", "main")

func main() {
	var maxOutput flagutil.SizeFlag
	fs := flag.CommandLine
	input := fs.String("i", "", "input file (defaults to stdin)")
	output := fs.String("o", "", "output file (defaults to stdout)")
	config := fs.String("config", "", "YAML file supplying defaults for unset flags")
	logLevel := fs.String("log-level", "NOTICE", "log verbosity")
	offset := fs.Int64("offset", -1, "start of the uncompressed range to extract (-1 = whole stream)")
	length := fs.Int64("length", 0, "number of uncompressed bytes to extract")
	span := fs.Int("span", zidx.DefaultSpan, "checkpoint spacing for ranged extraction")
	fs.Var(&maxOutput, "max-output", "cap on the decompressed size, e.g. 64M (0 = unlimited)")
	flag.Parse()

	capnslog.SetFormatter(capnslog.NewStringFormatter(os.Stderr))
	if *config != "" {
		raw, err := ioutil.ReadFile(*config)
		if err != nil {
			plog.Fatalf("reading config: %v", err)
		}
		if err := yamlutil.SetFlagsFromYaml(fs, raw); err != nil {
			plog.Fatalf("applying config: %v", err)
		}
	}
	lvl, err := capnslog.ParseLevel(*logLevel)
	if err != nil {
		plog.Fatalf("parsing log level: %v", err)
	}
	capnslog.MustRepoLogger("github.com/coreos/inflate").SetRepoLogLevel(lvl)

	data, err := readInput(*input)
	if err != nil {
		plog.Fatalf("reading input: %v", err)
	}

	var out []byte
	if *offset >= 0 {
		idx, err := zidx.Build(data, *span)
		if err != nil {
			plog.Fatalf("indexing: %v", err)
		}
		out, err = idx.Extract(data, *offset, *length)
		if err != nil && err != io.EOF {
			plog.Fatalf("extracting: %v", err)
		}
	} else {
		out, err = zlib.InflateLimit(data, int(maxOutput.Bytes()))
		if err != nil {
			plog.Fatalf("inflating: %v", err)
		}
	}
	plog.Infof("decompressed %d bytes to %d bytes", len(data), len(out))

	if err := writeOutput(*output, out); err != nil {
		plog.Fatalf("writing output: %v", err)
	}
}

func readInput(path string) ([]byte, error) {
	if path == "" {
		return ioutil.ReadAll(os.Stdin)
	}
	return ioutil.ReadFile(path)
}

func writeOutput(path string, b []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(b)
		return err
	}
	return ioutil.WriteFile(path, b, 0644)
}
