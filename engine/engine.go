// Package engine wires the status register, frame accumulator, wire
// sink, payload writers, control bus, IPC endpoint and protocol state
// machine into the single blocking driver loop, the same way the
// teacher's VirtualMachine assembles its vCPU and device set and drives
// them from one Run loop.
package engine

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/rtg-systems/printer1022emu/engine/control"
	"github.com/rtg-systems/printer1022emu/engine/dump"
	"github.com/rtg-systems/printer1022emu/engine/frame"
	"github.com/rtg-systems/printer1022emu/engine/ipc"
	"github.com/rtg-systems/printer1022emu/engine/payload"
	"github.com/rtg-systems/printer1022emu/engine/protocol"
	"github.com/rtg-systems/printer1022emu/engine/serialport"
	"github.com/rtg-systems/printer1022emu/engine/status"
	"github.com/rtg-systems/printer1022emu/engine/wire"
)

// Options collects the driver's startup configuration, assembled by
// cmd/printer1022d from its flag set.
type Options struct {
	Active bool // !Passive
	Debug  bool
	Layout payload.Layout
	RAMDir string
	Disk   string
}

// Driver owns every long-lived resource of one emulator instance and
// runs the single-threaded cooperative loop described in spec.md §5.
type Driver struct {
	port    serialport.Port
	server  *ipc.Server
	bus     *control.Bus
	stat    *status.Register
	buf     *frame.Accumulator
	sink    *wire.Sink
	files   *payload.Writer
	machine *protocol.Machine
	debug   bool

	// readBuf is allocated by New but not used by the read path:
	// readLoop allocates a fresh 4096-byte buffer for every Read.
	readBuf []byte

	// capture receives a copy of every byte read from the port (-c).
	capture io.Writer
}

// New assembles a Driver around an already-open port and IPC server.
func New(port serialport.Port, server *ipc.Server, opts Options) *Driver {
	stat := status.New()
	buf := frame.New(frame.DefaultCapacity)
	sink := wire.New(port)
	files := payload.New(opts.Layout, opts.RAMDir, opts.Disk)
	bus := control.New()

	d := &Driver{
		port:    port,
		server:  server,
		bus:     bus,
		stat:    stat,
		buf:     buf,
		sink:    sink,
		files:   files,
		debug:   opts.Debug,
		readBuf: make([]byte, 4096),
	}
	d.machine = protocol.New(stat, buf, sink, files, bus, protocol.Options{
		Active: opts.Active,
		Debug:  opts.Debug,
	}, server)
	return d
}

// SetCapture tees every byte the driver reads from the serial port, and
// every byte it writes to the wire, into w: the -c capture option.
func (d *Driver) SetCapture(w io.Writer) {
	d.capture = w
	d.sink.SetCapture(w)
}

// Run is the blocking driver loop: each iteration polls IPC
// non-blocking, then blocks on the serial port, then feeds the bytes
// read through the state machine. It returns when ctx is cancelled or
// an ExitRequested client request is processed.
func (d *Driver) Run(ctx context.Context) error {
	reads := make(chan readResult, 1)
	go d.readLoop(ctx, reads)

	for {
		if err := d.pollIPC(); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case r, ok := <-reads:
			if !ok {
				return nil
			}
			if r.err != nil {
				log.Printf("printer1022: serial read: %v", r.err)
				continue
			}
			if r.n == 0 {
				continue
			}
			d.consume(r.data[:r.n])
		}
	}
}

type readResult struct {
	data []byte
	n    int
	err  error
}

// readLoop bridges the port's blocking Read to a channel so Run can
// select over it alongside ctx.Done(), mirroring the teacher's
// stopChan-before-blocking-ioctl pattern (core_engine vcpu.go) without
// needing the serial port itself to understand cancellation.
func (d *Driver) readLoop(ctx context.Context, out chan<- readResult) {
	defer close(out)
	for {
		buf := make([]byte, 4096)
		n, err := d.port.Read(buf)
		select {
		case out <- readResult{data: buf, n: n, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

func (d *Driver) consume(data []byte) {
	d.files.ArmSnapshotIfDue()
	if d.capture != nil {
		d.capture.Write(data)
	}
	if d.debug {
		log.Printf("printer1022: rx %d bytes\n%s", len(data), dump.Hex(data))
	}
	for _, b := range data {
		d.machine.Step(b)
	}
}

// pollIPC performs the single non-blocking IPC receive per loop
// iteration (spec.md §5 "IPC requests are observed before each serial
// read"), translating accepted requests onto the control bus and
// acknowledging with REQUEST_SUCCESS/REQUEST_FAILURE immediately — this
// is the acceptance ack, distinct from the ACTION_SUCCESS the state
// machine emits once the transaction actually completes.
func (d *Driver) pollIPC() error {
	req, err := d.server.TryReceive()
	if err != nil {
		return fmt.Errorf("engine: ipc receive: %w", err)
	}
	if req == nil {
		return nil
	}

	switch req.Type {
	case ipc.Init:
		d.respond(req.ClientID, ipc.ActionSuccess, fmt.Sprintf("logmode %d", boolToInt(d.stat.IsLogMode())))

	case ipc.ReqReport:
		d.acceptControl(req.ClientID, control.Report, "report", "report")

	case ipc.ReqHistory:
		d.acceptControl(req.ClientID, control.History, "history", "history")

	case ipc.ReqLog:
		kind := control.LogModeOn
		if d.stat.IsLogMode() {
			kind = control.LogModeOff
		}
		// REQ_LOG's acceptance ack carries an empty body (utils.c
		// control_receive_msg: s_msg.rsp[0] = '\0'); the rejection
		// message still names the request for diagnostics.
		d.acceptControl(req.ClientID, kind, "log", "")

	case ipc.ReqExit:
		d.respond(req.ClientID, ipc.RequestSuccess, "exit")
		return ErrExitRequested

	default:
		d.respond(req.ClientID, ipc.RequestFailure, "unknown request type")
	}
	return nil
}

func (d *Driver) acceptControl(clientID int32, kind control.Kind, rejectLabel, successBody string) {
	if d.bus.Test(kind) {
		d.respond(clientID, ipc.RequestFailure, rejectLabel+" already pending")
		return
	}
	d.bus.Set(kind, control.Client{ReplyTo: clientID})
	d.respond(clientID, ipc.RequestSuccess, successBody)
}

// boolToInt renders a bool as the "0"/"1" spec.md's logmode reports use.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (d *Driver) respond(clientID int32, typ ipc.ResponseType, body string) {
	if err := d.server.RespondTo(clientID, ipc.Response{Type: typ, Body: body}); err != nil {
		log.Printf("printer1022: ipc respond to %d: %v", clientID, err)
	}
}

// ErrExitRequested is returned by Run when a client's REQ_EXIT message
// was processed; callers should treat it as a clean shutdown rather
// than a process-fatal error.
var ErrExitRequested = fmt.Errorf("engine: exit requested")

// TriggerLogModeOn synthetically raises the same control-bus entry an
// `@L` wire directive would in SS_Pause. Used by SIGUSR1 (spec.md §5,
// "SIGUSR1/SIGUSR2 set latching trigger flags ... synthetic LOGMODE_ON/
// LOGMODE_OFF requests, for testing").
func (d *Driver) TriggerLogModeOn() {
	d.bus.Set(control.LogModeOn, control.Wire{})
}

// TriggerLogModeOff is SIGUSR2's counterpart to TriggerLogModeOn.
func (d *Driver) TriggerLogModeOff() {
	d.bus.Set(control.LogModeOff, control.Wire{})
}

// Close releases the driver's owned resources: the IPC server's queue
// and any open payload files.
func (d *Driver) Close() error {
	var firstErr error
	if err := d.files.CloseReport(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := d.files.CloseHistory(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := d.files.CloseLog(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := d.server.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
