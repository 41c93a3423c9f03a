//go:build linux

package quipio

import (
	"os"

	"golang.org/x/sys/unix"
)

func readv(f *os.File, bufs [][]byte) (int, error) {
	return unix.Readv(int(f.Fd()), bufs)
}

func writev(f *os.File, bufs [][]byte) (int, error) {
	return unix.Writev(int(f.Fd()), bufs)
}
