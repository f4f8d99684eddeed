package presence

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// Opcode identifies the kind of an IPC frame.
type Opcode uint32

// IPC opcodes.
const (
	OpHandshake Opcode = 0
	OpFrame     Opcode = 1
	OpClose     Opcode = 2
	OpPing      Opcode = 3
	OpPong      Opcode = 4
)

// maxFrameSize bounds payloads read from the socket.
const maxFrameSize = 1 << 20

// writeFrame sends one frame: little-endian opcode and length, then JSON.
func writeFrame(w io.Writer, op Opcode, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}

	buf := make([]byte, 8+len(body))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(op))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(body)))
	copy(buf[8:], body)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

// readFrame reads one frame and returns its opcode and raw JSON body.
func readFrame(r io.Reader) (Opcode, []byte, error) {
	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, nil, fmt.Errorf("failed to read frame header: %w", err)
	}

	op := Opcode(binary.LittleEndian.Uint32(header[0:4]))
	n := binary.LittleEndian.Uint32(header[4:8])
	if n > maxFrameSize {
		return 0, nil, fmt.Errorf("frame too large: %d bytes", n)
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return 0, nil, fmt.Errorf("failed to read frame body: %w", err)
	}
	return op, body, nil
}
