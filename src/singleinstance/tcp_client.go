package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"
)

type tcpClient struct{}

func newTcpClient() *tcpClient { return &tcpClient{} }

func (c *tcpClient) TryCapture(ctx context.Context, req Request) (bool, string, error) {
	deadline := 2 * time.Second
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			deadline = d
		}
	}
	start, end := getPortRange()
	for port := start; port <= end; port++ {
		addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
		if !ping(addr, deadline) {
			continue
		}
		msg, err := send(ctx, addr, deadline, req)
		return true, msg, err
	}
	return false, "", nil
}

// send delivers req and blocks until the resident answers. The capture
// includes an interactive selection, so only ctx bounds the wait.
func send(ctx context.Context, addr string, dial time.Duration, req Request) (string, error) {
	conn, err := net.DialTimeout("tcp", addr, dial)
	if err != nil {
		return "", fmt.Errorf("dial resident: %w", err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	w := bufio.NewWriter(conn)
	if _, err := w.WriteString(req.Encode()); err != nil {
		return "", err
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	br := bufio.NewReader(conn)
	status, err := br.ReadString('\n')
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("read status: %w", err)
	}
	body, _ := io.ReadAll(br)
	switch status {
	case statusSuccess:
		return string(body), nil
	case statusError:
		return "", errors.New(string(body))
	}
	return "", fmt.Errorf("unexpected status %q", status)
}
