package ipc

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Server is the emulator side of the IPC endpoint: a single request
// queue shared by all clients; only the most recently seen client's
// reply handle is remembered (SPEC_FULL.md §1: no multi-client fan-out).
type Server struct {
	queueID      int
	lastClientID int32
	haveClient   bool
}

// NewServer creates (or opens) the well-known server request queue.
func NewServer() (*Server, error) {
	id, err := msgget(ServerQueueKey, unix.IPC_CREAT|queuePerm)
	if err != nil {
		return nil, err
	}
	return &Server{queueID: id}, nil
}

// ErrNoClient is returned by Respond when no client has ever sent a
// message, so there is no reply-queue handle to unicast to.
var ErrNoClient = errNoClient{}

type errNoClient struct{}

func (errNoClient) Error() string { return "ipc: no client seen yet" }

// TryReceive performs a single non-blocking receive. It returns (nil,
// nil) if no message is currently queued — the normal per-iteration
// case the driver loop polls on. It also captures the client's reply
// handle from every message, per SPEC_FULL.md §4.6, so a late-joining
// client works without an explicit INIT handshake.
func (s *Server) TryReceive() (*Request, error) {
	var w clientReqWire
	n, err := msgrcv(s.queueID, unsafe.Pointer(&w), unsafe.Sizeof(w)-unsafe.Sizeof(w.Mtype), 0, unix.IPC_NOWAIT)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	req := decodeRequest(w)
	s.lastClientID = req.ClientID
	s.haveClient = true
	return &req, nil
}

// Respond unicasts resp to the last captured client.
func (s *Server) Respond(resp Response) error {
	if !s.haveClient {
		return ErrNoClient
	}
	return s.RespondTo(s.lastClientID, resp)
}

// RespondTo unicasts resp to a specific client queue id, bypassing the
// "last captured client" tracking. Used when replying to the client
// that raised a specific pending control-bus request, which may not be
// the most recently seen client if another client spoke in between.
func (s *Server) RespondTo(clientID int32, resp Response) error {
	w := encodeResponse(resp)
	return msgsnd(int(clientID), unsafe.Pointer(&w), unsafe.Sizeof(w)-unsafe.Sizeof(w.Mtype), 0)
}

// Close removes the server's request queue.
func (s *Server) Close() error {
	return msgctlRemove(s.queueID)
}
