// printer1022d emulates the 1022 diverter controller's RS-485 printer
// protocol: it drives (or, in -p passive mode, merely observes) the
// report/history/log-mode transactions described in SPEC_FULL.md, and
// answers IPC requests from pe-console/pe-control.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rtg-systems/printer1022emu/engine"
	"github.com/rtg-systems/printer1022emu/engine/ipc"
	"github.com/rtg-systems/printer1022emu/engine/payload"
	"github.com/rtg-systems/printer1022emu/engine/replay"
	"github.com/rtg-systems/printer1022emu/engine/serialport"
	"github.com/rtg-systems/printer1022emu/internal/bootstrap"
)

func mainImpl() error {
	capture := flag.String("c", "", "capture raw wire bytes to file (implies -p)")
	debug := flag.Bool("d", false, "debug-dump state transitions")
	passive := flag.Bool("p", false, "passive mode: never write to the wire")
	slow := flag.Bool("s", false, "disable low-latency serial mode")
	unit := flag.String("u", "", "unit-test mode: replay a hex-dump capture instead of a real port")
	target := flag.Bool("target", false, "use TARGET (embedded) file layout instead of desktop")
	ramDir := flag.String("ram-dir", "/tmp/printer1022", "directory for readings.txt/report.txt/history.txt")
	diskDir := flag.String("disk-dir", "/var/lib/printer1022", "directory for logmode-<ts>.txt")
	flag.Parse()

	if *capture != "" {
		*passive = true
	}

	if flag.NArg() != 1 && *unit == "" {
		return errors.New("usage: printer1022d [-c file] [-d] [-p] [-s] [-u file] [-target] <serial-device>")
	}

	layout := payload.Desktop
	if *target {
		layout = payload.Target
	}
	if err := bootstrap.EnsureDirs(*ramDir, *diskDir); err != nil {
		return err
	}
	if err := bootstrap.RaisePriority(5); err != nil {
		fmt.Fprintf(os.Stderr, "printer1022d: raise priority: %v (continuing at default priority)\n", err)
	}

	var port serialport.Port
	if *unit != "" {
		r, err := replay.Open(*unit)
		if err != nil {
			return err
		}
		port = r
		*passive = true
	} else {
		p, err := serialport.Open(flag.Arg(0), !*slow)
		if err != nil {
			return err
		}
		defer p.Close()
		port = p
	}

	server, err := ipc.NewServer()
	if err != nil {
		return fmt.Errorf("printer1022d: start ipc server: %w", err)
	}

	drv := engine.New(port, server, engine.Options{
		Active: !*passive,
		Debug:  *debug,
		Layout: layout,
		RAMDir: *ramDir,
		Disk:   *diskDir,
	})
	defer drv.Close()

	if *capture != "" {
		f, err := os.Create(*capture)
		if err != nil {
			return fmt.Errorf("printer1022d: open capture file: %w", err)
		}
		defer f.Close()
		drv.SetCapture(f)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGUSR1, syscall.SIGUSR2)
	go func() {
		for sig := range sigs {
			switch sig {
			case syscall.SIGINT:
				cancel()
				return
			case syscall.SIGUSR1:
				drv.TriggerLogModeOn()
			case syscall.SIGUSR2:
				drv.TriggerLogModeOff()
			}
		}
	}()

	err = drv.Run(ctx)
	if errors.Is(err, engine.ErrExitRequested) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "printer1022d: %s\n", err)
		os.Exit(1)
	}
}
