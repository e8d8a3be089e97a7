package ipc

import "bytes"

// MaxPayload is the size of the informational command/response string
// embedded in each IPC message, matching the original C
// `MSG_MAX_PAYLOAD` (Common/message_services.h).
const MaxPayload = 256

// RequestType is the message-type discriminator a client sets on a
// request (the `mtype` field of the original `client_req`).
type RequestType int32

const (
	Init RequestType = iota + 1
	ReqReport
	ReqHistory
	ReqLog
	ReqExit
)

func (t RequestType) String() string {
	switch t {
	case Init:
		return "INIT"
	case ReqReport:
		return "REQ_REPORT"
	case ReqHistory:
		return "REQ_HISTORY"
	case ReqLog:
		return "REQ_LOG"
	case ReqExit:
		return "REQ_EXIT"
	default:
		return "UNKNOWN"
	}
}

// ResponseType is the message-type discriminator the server sets on a
// response (the `mtype` field of the original `server_rsp`).
type ResponseType int32

const (
	RequestSuccess ResponseType = iota + 1
	RequestFailure
	ActionSuccess
	ActionFailure
	Reset
)

// Request is the decoded form of a client_req message.
type Request struct {
	Type     RequestType
	ClientID int32
	Cmd      string
}

// Response is the decoded form of a server_rsp message.
type Response struct {
	Type ResponseType
	Body string
}

// clientReqWire mirrors the C `struct client_req` layout: a long mtype
// followed by the client's reply-queue id and a fixed command buffer.
// This is the exact shape msgsnd/msgrcv copy byte-for-byte.
type clientReqWire struct {
	Mtype    int64
	ClientID int32
	Cmd      [MaxPayload]byte
}

// serverRspWire mirrors the C `struct server_rsp` layout.
type serverRspWire struct {
	Mtype int64
	Rsp   [MaxPayload]byte
}

func encodeRequest(r Request) clientReqWire {
	var w clientReqWire
	w.Mtype = int64(r.Type)
	w.ClientID = r.ClientID
	copy(w.Cmd[:], r.Cmd)
	return w
}

func decodeRequest(w clientReqWire) Request {
	return Request{
		Type:     RequestType(w.Mtype),
		ClientID: w.ClientID,
		Cmd:      cString(w.Cmd[:]),
	}
}

func encodeResponse(r Response) serverRspWire {
	var w serverRspWire
	w.Mtype = int64(r.Type)
	copy(w.Rsp[:], r.Body)
	return w
}

func decodeResponse(w serverRspWire) Response {
	return Response{
		Type: ResponseType(w.Mtype),
		Body: cString(w.Rsp[:]),
	}
}

// cString trims a fixed-size buffer at its first NUL, matching the
// original's "must be a null terminated string" contract.
func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
