//go:build !linux

package quipio

import "os"

func readv(f *os.File, bufs [][]byte) (int, error) {
	return 0, ErrUnsupported
}

func writev(f *os.File, bufs [][]byte) (int, error) {
	return 0, ErrUnsupported
}
