package redis

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Reply is a decoded RESP2 value.
type Reply struct {
	Type  byte
	Text  string
	Array []Reply
	IsNil bool
}

// Int parses an integer reply.
func (r Reply) Int() (int64, error) {
	if r.Type != ':' {
		return 0, fmt.Errorf("redis: expected integer reply, got %q", r.Type)
	}
	return strconv.ParseInt(r.Text, 10, 64)
}

func writeCommand(w *bufio.Writer, args []string) error {
	buf := make([]byte, 0, 64)
	buf = append(buf, '*')
	buf = strconv.AppendInt(buf, int64(len(args)), 10)
	buf = append(buf, '\r', '\n')
	for _, arg := range args {
		buf = append(buf, '$')
		buf = strconv.AppendInt(buf, int64(len(arg)), 10)
		buf = append(buf, '\r', '\n')
		buf = append(buf, arg...)
		buf = append(buf, '\r', '\n')
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("redis write: %w", err)
	}
	return nil
}

func readReply(r *bufio.Reader) (Reply, error) {
	prefix, err := r.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Reply{}, io.EOF
		}
		return Reply{}, fmt.Errorf("redis read: %w", err)
	}

	line, err := readLine(r)
	if err != nil {
		return Reply{}, err
	}

	switch prefix {
	case '+', '-', ':':
		return Reply{Type: prefix, Text: line}, nil
	case '$':
		length, err := strconv.Atoi(line)
		if err != nil {
			return Reply{}, fmt.Errorf("redis bulk length: %w", err)
		}
		if length < 0 {
			return Reply{Type: '$', IsNil: true}, nil
		}
		buf := make([]byte, length+2)
		if _, err := io.ReadFull(r, buf); err != nil {
			return Reply{}, fmt.Errorf("redis bulk read: %w", err)
		}
		return Reply{Type: '$', Text: string(buf[:length])}, nil
	case '*':
		length, err := strconv.Atoi(line)
		if err != nil {
			return Reply{}, fmt.Errorf("redis array length: %w", err)
		}
		if length < 0 {
			return Reply{Type: '*', IsNil: true}, nil
		}
		values := make([]Reply, 0, length)
		for range length {
			value, err := readReply(r)
			if err != nil {
				return Reply{}, err
			}
			values = append(values, value)
		}
		return Reply{Type: '*', Array: values}, nil
	default:
		return Reply{}, fmt.Errorf("unexpected redis reply type: %q", prefix)
	}
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("redis read line: %w", err)
	}
	return strings.TrimSuffix(line, "\r\n"), nil
}
