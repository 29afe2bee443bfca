package stream

import "io"

// NonSeekableIO adapts a plain io.Reader (optionally an io.Closer) into a
// Stream that always reports non-seekable, for backends (or member
// sources, e.g. piped/network input per spec §4.4) that never support
// Seek regardless of the codec wrapped around them. It formalizes, as a
// standalone exported helper, the embeddable nonSeekable struct that
// sequentialAdapter and similar internal wrappers already use.
type NonSeekableIO struct {
	nonSeekable
	r io.Reader
}

func NewNonSeekableIO(r io.Reader) *NonSeekableIO {
	return &NonSeekableIO{r: r}
}

func (n *NonSeekableIO) Read(p []byte) (int, error) {
	c, err := n.r.Read(p)
	return c, translateCommon(err)
}

func (n *NonSeekableIO) Size() (int64, bool) { return 0, false }

func (n *NonSeekableIO) Close() error {
	if c, ok := n.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
