// pe-control is a one-shot client for printer1022d: it sends a single
// request over the IPC endpoint, waits for the matching response, prints
// it, and exits. Grounded on the original PE-Control tool, which used
// the same ftok-keyed reply queue so repeated invocations against one
// printer1022d instance don't leak a new queue per call.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/rtg-systems/printer1022emu/engine/ipc"
)

func mainImpl() error {
	keyPath := flag.String("k", "", "derive this client's reply-queue key from a filesystem path (ftok-style)")
	flag.Parse()

	if flag.NArg() != 1 {
		return errors.New("usage: pe-control [-k path] report|history|log|exit")
	}

	reqType, err := parseCommand(flag.Arg(0))
	if err != nil {
		return err
	}

	var client *ipc.Client
	if *keyPath != "" {
		client, err = ipc.NewClientAt(*keyPath)
	} else {
		client, err = ipc.NewClient()
	}
	if err != nil {
		return fmt.Errorf("pe-control: connect: %w", err)
	}
	defer client.Close()

	if err := client.Send(ipc.Request{Type: reqType, Cmd: flag.Arg(0)}); err != nil {
		return fmt.Errorf("pe-control: send: %w", err)
	}

	resp, err := client.Receive(true)
	if err != nil {
		return fmt.Errorf("pe-control: receive: %w", err)
	}
	fmt.Printf("%s: %s\n", responseLabel(resp.Type), resp.Body)
	if resp.Type == ipc.RequestFailure || resp.Type == ipc.ActionFailure {
		os.Exit(1)
	}
	return nil
}

func parseCommand(cmd string) (ipc.RequestType, error) {
	switch cmd {
	case "report":
		return ipc.ReqReport, nil
	case "history":
		return ipc.ReqHistory, nil
	case "log":
		return ipc.ReqLog, nil
	case "exit":
		return ipc.ReqExit, nil
	default:
		return 0, fmt.Errorf("pe-control: unknown command %q", cmd)
	}
}

func responseLabel(t ipc.ResponseType) string {
	switch t {
	case ipc.RequestSuccess:
		return "accepted"
	case ipc.RequestFailure:
		return "rejected"
	case ipc.ActionSuccess:
		return "completed"
	case ipc.ActionFailure:
		return "failed"
	case ipc.Reset:
		return "reset"
	default:
		return "unknown"
	}
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}
