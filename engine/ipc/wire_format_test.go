package ipc

import "testing"

func TestRequestRoundTrip(t *testing.T) {
	req := Request{Type: ReqReport, ClientID: 123, Cmd: "report"}
	got := decodeRequest(encodeRequest(req))
	if got != req {
		t.Fatalf("round trip = %+v, want %+v", got, req)
	}
}

func TestResponseRoundTrip(t *testing.T) {
	resp := Response{Type: ActionSuccess, Body: "report /tmp/report-20260730.txt"}
	got := decodeResponse(encodeResponse(resp))
	if got != resp {
		t.Fatalf("round trip = %+v, want %+v", got, resp)
	}
}

func TestCStringTrimsAtFirstNUL(t *testing.T) {
	buf := make([]byte, 16)
	copy(buf, "hello")
	if got := cString(buf); got != "hello" {
		t.Fatalf("cString = %q, want %q", got, "hello")
	}
}

func TestRequestTypeString(t *testing.T) {
	cases := map[RequestType]string{
		Init:      "INIT",
		ReqReport: "REQ_REPORT",
		ReqExit:   "REQ_EXIT",
	}
	for typ, want := range cases {
		if got := typ.String(); got != want {
			t.Fatalf("%d.String() = %q, want %q", typ, got, want)
		}
	}
}
