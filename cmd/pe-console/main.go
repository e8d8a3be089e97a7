// pe-console is the interactive front-end for printer1022d: it reads
// commands from stdin, submits them over the IPC endpoint, and prints
// both the immediate acceptance response and any later ACTION_SUCCESS/
// ACTION_FAILURE notification as they arrive — mirroring the original
// PE-Console's role as the operator's live session against the driver.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rtg-systems/printer1022emu/engine/ipc"
)

func mainImpl() error {
	keyPath := flag.String("k", "", "derive this client's reply-queue key from a filesystem path (ftok-style)")
	flag.Parse()

	var client *ipc.Client
	var err error
	if *keyPath != "" {
		client, err = ipc.NewClientAt(*keyPath)
	} else {
		client, err = ipc.NewClient()
	}
	if err != nil {
		return fmt.Errorf("pe-console: connect: %w", err)
	}
	defer client.Close()

	if err := client.Send(ipc.Request{Type: ipc.Init, Cmd: "init"}); err != nil {
		return fmt.Errorf("pe-console: send init: %w", err)
	}

	done := make(chan struct{})
	go receiveLoop(client, done)

	fmt.Println("pe-console: commands: report, history, log, exit")
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		reqType, ok := commandType(line)
		if !ok {
			fmt.Println("unknown command:", line)
			continue
		}
		if err := client.Send(ipc.Request{Type: reqType, Cmd: line}); err != nil {
			fmt.Fprintf(os.Stderr, "send: %v\n", err)
			continue
		}
		if reqType == ipc.ReqExit {
			break
		}
	}
	close(done)
	return sc.Err()
}

func commandType(line string) (ipc.RequestType, bool) {
	switch line {
	case "report":
		return ipc.ReqReport, true
	case "history":
		return ipc.ReqHistory, true
	case "log":
		return ipc.ReqLog, true
	case "exit":
		return ipc.ReqExit, true
	default:
		return 0, false
	}
}

// receiveLoop polls the reply queue non-blocking so the console can be
// interrupted without getting stuck in a blocking receive.
func receiveLoop(client *ipc.Client, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		default:
		}
		resp, err := client.Receive(false)
		if err != nil {
			fmt.Fprintf(os.Stderr, "receive: %v\n", err)
			return
		}
		if resp == nil {
			time.Sleep(50 * time.Millisecond)
			continue
		}
		fmt.Printf("<- %v\n", resp.Body)
	}
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}
