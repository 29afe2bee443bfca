package sevenzip

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nabbar/archivey/archivereader"
	"github.com/nabbar/archivey/errs"
)

func TestOpen_AlwaysNotSupported(t *testing.T) {
	_, err := Open(archivereader.Source{}, archivereader.Options{})
	require.True(t, errs.Is(err, errs.ErrNotSupported))
}
