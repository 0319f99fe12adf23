package ply

import (
	"bufio"
	"io"
	"os"

	"go.uber.org/multierr"
)

// Write encodes the records as a binary Inria PLY in the host byte order.
func (g Gaussians) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if err := writeInriaHeader(bw, len(g)); err != nil {
		return err
	}

	for i := range g {
		if _, err := bw.Write(g[i].bytes()[:]); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// WriteFile creates or truncates the file at path and writes the records to it.
func (g Gaussians) WriteFile(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))

	return g.Write(f)
}
