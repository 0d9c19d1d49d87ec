package example

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

type fakeSocket struct {
	opened   bool
	typ      uint8
	written  [][]byte
	toRead   [][]byte
	closed   bool
	openErr  error
	writeErr error
}

func (f *fakeSocket) Open(addr uint32, port uint16, typ uint8) (int, error) {
	if f.openErr != nil {
		return 0, f.openErr
	}
	f.opened = true
	f.typ = typ
	return 7, nil
}

func (f *fakeSocket) Write(netfd int, data []byte) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.written = append(f.written, append([]byte{}, data...))
	return nil
}

func (f *fakeSocket) Read(netfd int, buf []byte) (int, error) {
	if len(f.toRead) == 0 {
		return 0, errors.New("fakeSocket: no more datagrams")
	}
	next := f.toRead[0]
	f.toRead = f.toRead[1:]
	return copy(buf, next), nil
}

func (f *fakeSocket) Close(netfd int) error {
	f.closed = true
	return nil
}

func TestSendChunksReaderIntoDatagrams(t *testing.T) {
	f := &fakeSocket{}
	r := strings.NewReader("hello world")

	if err := Send(f, 0x0A000001, 9000, 4, r); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if !f.opened || f.typ != UDPType {
		t.Fatal("Send did not Open a UDP connection")
	}
	if !f.closed {
		t.Fatal("Send did not Close the connection")
	}

	var got bytes.Buffer
	for _, chunk := range f.written {
		got.Write(chunk)
	}
	if got.String() != "hello world" {
		t.Fatalf("written = %q, want %q", got.String(), "hello world")
	}
}

func TestSendPropagatesWriteError(t *testing.T) {
	f := &fakeSocket{writeErr: errors.New("boom")}
	err := Send(f, 0x0A000001, 9000, 16, strings.NewReader("x"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !f.closed {
		t.Fatal("Send did not Close on error")
	}
}

func TestListenCopiesDatagramsUntilError(t *testing.T) {
	f := &fakeSocket{toRead: [][]byte{[]byte("abc"), []byte("def")}}
	var out bytes.Buffer

	err := Listen(f, 0x0A000001, 9000, 16, &out)
	if err == nil {
		t.Fatal("expected Listen to return the fake's terminal error")
	}
	if out.String() != "abcdef" {
		t.Fatalf("out = %q, want %q", out.String(), "abcdef")
	}
	if !f.closed {
		t.Fatal("Listen did not Close the connection")
	}
}
