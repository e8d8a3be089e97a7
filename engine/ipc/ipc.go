// Package ipc implements the bidirectional System V message-queue pair
// between the emulator and local client processes (the interactive
// console and the one-shot control tool), grounded on the original
// `Common/message_services.c` msgget/msgsnd/msgrcv transport.
//
// The raw queue operations are issued the same way the teacher repo
// issues raw KVM ioctls (core_engine/vcpu.go, core_engine/hypervisor) —
// numbered syscalls via golang.org/x/sys/unix, rather than a channel- or
// socket-based reimplementation, so the wire format stays a literal fact
// about the process boundary (SPEC_FULL.md glossary entry).
package ipc

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ServerQueueKey is the fixed key clients use to find the server's
// request queue, matching the original's MSG_QUEUE_KEY.
const ServerQueueKey = 0x1aaaaaa1

const queuePerm = 0666

// msgget wraps the msgget(2) syscall.
func msgget(key int, flags int) (int, error) {
	id, _, errno := unix.Syscall(unix.SYS_MSGGET, uintptr(key), uintptr(flags), 0)
	if errno != 0 {
		return -1, fmt.Errorf("ipc: msgget: %w", errno)
	}
	return int(id), nil
}

// msgsnd wraps the msgsnd(2) syscall. msgp points at a struct whose
// first field is the `long mtype`; msgsz is the length of everything
// after that field.
func msgsnd(msqid int, msgp unsafe.Pointer, msgsz uintptr, flags int) error {
	_, _, errno := unix.Syscall6(unix.SYS_MSGSND, uintptr(msqid), uintptr(msgp), msgsz, uintptr(flags), 0, 0)
	if errno != 0 {
		return fmt.Errorf("ipc: msgsnd: %w", errno)
	}
	return nil
}

// msgrcv wraps the msgrcv(2) syscall. Returns the number of bytes copied
// into msgp's trailing field, or (0, nil) for ENOMSG under IPC_NOWAIT —
// the normal "nothing pending" case.
func msgrcv(msqid int, msgp unsafe.Pointer, msgsz uintptr, msgtyp int64, flags int) (int, error) {
	n, _, errno := unix.Syscall6(unix.SYS_MSGRCV, uintptr(msqid), uintptr(msgp), msgsz, uintptr(msgtyp), uintptr(flags), 0)
	if errno != 0 {
		if errno == unix.ENOMSG {
			return 0, nil
		}
		return 0, fmt.Errorf("ipc: msgrcv: %w", errno)
	}
	return int(n), nil
}

// msgctlRemove wraps msgctl(2) with IPC_RMID.
func msgctlRemove(msqid int) error {
	_, _, errno := unix.Syscall(unix.SYS_MSGCTL, uintptr(msqid), uintptr(unix.IPC_RMID), 0)
	if errno != 0 {
		return fmt.Errorf("ipc: msgctl(IPC_RMID): %w", errno)
	}
	return nil
}

// KeyFromPath derives a System V IPC key from a filesystem path the way
// the original's `msg_create_client_mq_ftok` does via ftok(3): it reads
// the file's device and inode numbers and folds them with a project id
// into a 32-bit key. Exposed so two cooperating emulator instances on
// one host (or the front-ends, via -k) can agree on a queue key without
// a central registry.
func KeyFromPath(path string, projectID byte) (int, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, fmt.Errorf("ipc: stat %s for ftok: %w", path, err)
	}
	key := (int32(projectID) << 24) | (int32(st.Dev&0xff) << 16) | int32(st.Ino&0xffff)
	return int(key), nil
}
