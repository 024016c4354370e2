package cmd

import (
	"io"
	"os"

	"golang.org/x/text/message"

	"grimm.is/tuntap/internal/brand"
)

// RunVersion prints the version banner.
func RunVersion() {
	runVersion(os.Stdout, Printer)
}

func runVersion(w io.Writer, p *message.Printer) {
	p.Fprintln(w, brand.VersionString())
	p.Fprintln(w, brand.About())
}
