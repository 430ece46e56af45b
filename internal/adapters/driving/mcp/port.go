package mcp

import (
	"fmt"
	"net"
)

// HTTP ports tried by FindAvailablePort when serving without an explicit port.
const (
	DefaultPortStart = 8080
	DefaultPortEnd   = 8180
)

// FindAvailablePort finds an available port in the given range.
func FindAvailablePort(startPort, endPort int) (int, error) {
	for port := startPort; port <= endPort; port++ {
		addr := fmt.Sprintf("127.0.0.1:%d", port)
		listener, err := net.Listen("tcp", addr)
		if err == nil {
			listener.Close()
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available port in range %d-%d", startPort, endPort)
}
