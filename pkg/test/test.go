// Package test holds helpers shared by tests.
package test

import (
	"net"
	"sync"
)

var (
	used = map[int]struct{}{}
	lock sync.Mutex
)

// RandomPort returns a free loopback port that no other caller in this
// process has been handed.
func RandomPort() int {
	lock.Lock()
	defer lock.Unlock()
	for {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			panic(err)
		}
		port := l.Addr().(*net.TCPAddr).Port
		_ = l.Close()
		if _, ok := used[port]; !ok {
			used[port] = struct{}{}
			return port
		}
	}
}
