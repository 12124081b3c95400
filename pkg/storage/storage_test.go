package storage

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestLocalStorage(t *testing.T) {
	is := is.New(t)
	s := NewLocalStorage(t.TempDir())

	n, err := s.Put("cards/1/abc-proof.txt", strings.NewReader("hello"))
	is.NoErr(err)
	is.Equal(n, int64(5))

	ok, err := s.Exists("cards/1/abc-proof.txt")
	is.NoErr(err)
	is.True(ok)

	f, err := s.Open("cards/1/abc-proof.txt")
	is.NoErr(err)
	b, err := io.ReadAll(f)
	is.NoErr(err)
	is.NoErr(f.Close())
	is.Equal(string(b), "hello")

	info, err := s.Stat("cards/1/abc-proof.txt")
	is.NoErr(err)
	is.Equal(info.Size(), int64(5))

	is.NoErr(s.Delete("cards/1/abc-proof.txt"))
	ok, err = s.Exists("cards/1/abc-proof.txt")
	is.NoErr(err)
	is.True(!ok)
}

func TestLocalStorageRejectsEscapes(t *testing.T) {
	is := is.New(t)
	s := NewLocalStorage(t.TempDir())

	for _, name := range []string{"", "../x", "cards/../../x", "/etc/passwd", `cards\..\x`, "."} {
		_, err := s.Put(name, strings.NewReader("x"))
		is.True(errors.Is(err, ErrInvalidName))
	}
}

func TestPolicy(t *testing.T) {
	is := is.New(t)

	p, err := NewPolicy(10, []string{"image/*", "application/pdf"})
	is.NoErr(err)

	is.NoErr(p.Check(10, "image/png"))
	is.NoErr(p.Check(1, "application/pdf"))
	is.NoErr(p.Check(1, "IMAGE/JPEG; charset=binary"))
	is.True(errors.Is(p.Check(11, "image/png"), ErrTooLarge))
	is.True(errors.Is(p.Check(1, "text/html"), ErrTypeNotAllowed))
	is.True(errors.Is(p.Check(1, "image/svg+xml/extra"), ErrTypeNotAllowed))

	open, err := NewPolicy(0, nil)
	is.NoErr(err)
	is.NoErr(open.Check(1<<40, "application/x-anything"))
}
