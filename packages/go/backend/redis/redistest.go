package redis

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
)

// FakeServer is a loopback RESP server answering PING and PUBLISH. It
// records every published message so tests can assert on fan-out.
type FakeServer struct {
	ln net.Listener

	mu        sync.Mutex
	published []Published
	conns     map[net.Conn]struct{}
	closed    bool
	notify    chan Published
	wg        sync.WaitGroup
}

// Published is a message observed by FakeServer.
type Published struct {
	Channel string
	Payload string
}

// NewFakeServer listens on an ephemeral loopback port.
func NewFakeServer() (*FakeServer, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	s := &FakeServer{ln: ln, conns: make(map[net.Conn]struct{}), notify: make(chan Published, 64)}
	s.wg.Add(1)
	go s.accept()
	return s, nil
}

func (s *FakeServer) Addr() string { return s.ln.Addr().String() }

// Messages delivers each PUBLISH as it is handled.
func (s *FakeServer) Messages() <-chan Published { return s.notify }

// Published returns every message handled so far.
func (s *FakeServer) Published() []Published {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Published(nil), s.published...)
}

// Close stops accepting and drops every open connection.
func (s *FakeServer) Close() error {
	err := s.ln.Close()
	s.mu.Lock()
	s.closed = true
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
	return err
}

func (s *FakeServer) accept() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			_ = conn.Close()
			return
		}
		s.conns[conn] = struct{}{}
		s.wg.Add(1)
		s.mu.Unlock()
		go s.serve(conn)
	}
}

func (s *FakeServer) serve(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		_ = conn.Close()
	}()

	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)
	for {
		args, err := readCommandArgs(r)
		if err != nil {
			return
		}
		switch strings.ToUpper(args[0]) {
		case "PING":
			w.WriteString("+PONG\r\n")
		case "PUBLISH":
			if len(args) != 3 {
				w.WriteString("-ERR wrong number of arguments for 'publish' command\r\n")
				break
			}
			msg := Published{Channel: args[1], Payload: args[2]}
			s.mu.Lock()
			s.published = append(s.published, msg)
			s.mu.Unlock()
			select {
			case s.notify <- msg:
			default:
			}
			w.WriteString(":1\r\n")
		default:
			fmt.Fprintf(w, "-ERR unknown command '%s'\r\n", args[0])
		}
		if err := w.Flush(); err != nil {
			return
		}
	}
}

func readCommandArgs(r *bufio.Reader) ([]string, error) {
	prefix, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if prefix != '*' {
		return nil, fmt.Errorf("unexpected prefix %q", prefix)
	}
	line, err := r.ReadString('\n')
	if err != nil {
		return nil, err
	}
	count, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || count <= 0 {
		return nil, fmt.Errorf("bad argument count %q", line)
	}
	args := make([]string, 0, count)
	for range count {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if b != '$' {
			return nil, fmt.Errorf("unexpected bulk prefix %q", b)
		}
		bulkLenLine, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		bulkLen, err := strconv.Atoi(strings.TrimSpace(bulkLenLine))
		if err != nil {
			return nil, err
		}
		buf := make([]byte, bulkLen+2)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		args = append(args, string(buf[:bulkLen]))
	}
	return args, nil
}
