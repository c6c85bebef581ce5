package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
)

// bail prints a message to stderr and exits with status=1
func bail(msg string, args ...interface{}) {
	msg = fmt.Sprintf(msg, args...)
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}

// writeTable writes the frame as CSV to the output path, or to stdout when
// the path is "-".
func writeTable(df dataframe.DataFrame, output string) error {
	if output == "-" {
		return df.WriteCSV(os.Stdout)
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()
	return df.WriteCSV(f)
}

// unindent formats long help text before it's printed to the console.
// it's helpful to indent multiline strings to make it look nice in the
// code, but you don't want those indents to make their way to the
// console output.
func unindent(str string) string {
	str = strings.TrimSpace(str)
	out := new(bytes.Buffer)
	for _, line := range strings.Split(str, "\n") {
		out.WriteString(strings.TrimSpace(line) + "\n")
	}
	return out.String()
}
