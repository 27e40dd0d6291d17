// toon - TOON codec CLI
//
// Usage:
//
//	toon encode [flags] [file]   Convert JSON to TOON
//	toon decode [flags] [file]   Convert TOON to JSON
//
// If no file is given, reads from stdin. With --watch, the conversion reruns
// whenever the input file changes.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"

	toon "github.com/BranLang/toon-parser"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	cmd := os.Args[1]

	switch cmd {
	case "encode", "decode":
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "toon: unknown command %q\n", cmd)
		printUsage()
		os.Exit(1)
	}

	flags := pflag.NewFlagSet(cmd, pflag.ExitOnError)
	indent := flags.IntP("indent", "i", 2, "Spaces per indentation level")
	delimiter := flags.StringP("delimiter", "d", ",", "Array/tabular delimiter: ',' '|' or 'tab'")
	sortKeys := flags.Bool("sort-keys", false, "Emit object keys in sorted order (encode)")
	lenient := flags.Bool("lenient", false, "Disable strict decoding validation (decode)")
	out := flags.StringP("out", "o", "", "Write output to a file instead of stdout")
	watch := flags.BoolP("watch", "w", false, "Rerun the conversion whenever the input file changes")
	flags.Parse(os.Args[2:])

	delim := *delimiter
	if delim == "tab" {
		delim = "\t"
	}

	path := ""
	if flags.NArg() > 0 && flags.Arg(0) != "-" {
		path = flags.Arg(0)
	}

	run := func() error {
		input, err := readInput(path)
		if err != nil {
			return err
		}
		var output []byte
		if cmd == "encode" {
			output, err = encodeJSON(input, *indent, delim, *sortKeys)
		} else {
			output, err = decodeTOON(input, *lenient)
		}
		if err != nil {
			return err
		}
		return writeOutput(*out, output)
	}

	if err := run(); err != nil {
		fatal("%v", err)
	}

	if *watch {
		if path == "" {
			fatal("--watch requires a file argument")
		}
		if err := watchFile(path, run); err != nil {
			fatal("%v", err)
		}
	}
}

func encodeJSON(input []byte, indent int, delim string, sortKeys bool) ([]byte, error) {
	value, err := toon.FromJSON(input)
	if err != nil {
		return nil, err
	}
	text, err := toon.EncodeWithOptions(value, &toon.EncodeOptions{
		Indent:    indent,
		Delimiter: delim,
		SortKeys:  sortKeys,
	})
	if err != nil {
		return nil, err
	}
	return append([]byte(text), '\n'), nil
}

func decodeTOON(input []byte, lenient bool) ([]byte, error) {
	value, err := toon.DecodeWithOptions(string(input), &toon.DecodeOptions{Strict: !lenient})
	if err != nil {
		return nil, err
	}
	data, err := toon.ToJSONIndent(value, "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func readInput(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// watchFile reruns run whenever path changes. The parent directory is
// watched rather than the file itself, so atomic writes (temp file + rename)
// and file recreation are picked up; a failed conversion is reported and the
// watch continues.
func watchFile(path string, run func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %q: %w", dir, err)
	}
	filename := filepath.Base(abs)

	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				if err := run(); err != nil {
					fmt.Fprintf(os.Stderr, "toon: %v\n", err)
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "toon: watch error: %v\n", err)
		}
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `toon - TOON codec

Usage:
  toon encode [flags] [file]   Convert JSON to TOON
  toon decode [flags] [file]   Convert TOON to JSON

Flags:
  -i, --indent int         Spaces per indentation level (default 2)
  -d, --delimiter string   Array/tabular delimiter: ',' '|' or 'tab' (default ",")
      --sort-keys          Emit object keys in sorted order (encode)
      --lenient            Disable strict decoding validation (decode)
  -o, --out string         Write output to a file instead of stdout
  -w, --watch              Rerun the conversion whenever the input file changes

If no file is given (or the file is "-"), input is read from stdin.`)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "toon: "+format+"\n", args...)
	os.Exit(1)
}
