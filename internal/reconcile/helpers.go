package reconcile

import (
	"io"

	"github.com/astropret/rentcal/internal"
)

func logf(w io.Writer, format string, a ...any) {
	internal.Logf(w, "reconcile:", format, a...)
}
